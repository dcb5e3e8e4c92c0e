package usecase

import (
	"math"
	"sort"
	"strconv"

	"TelescopeStatus/internal/domain/models"
)

// InstrumentUsageCounts counts observations per instrument_name.
func (d *TelescopeData) InstrumentUsageCounts() models.CategoryCounts {
	return d.categoryCounts(models.ColumnInstrument)
}

// DataTypeCounts counts observations per dataproduct_type.
func (d *TelescopeData) DataTypeCounts() models.CategoryCounts {
	return d.categoryCounts(models.ColumnProductType)
}

// categoryCounts groups by column, skipping missing values. Results are
// ordered by descending count, then label.
func (d *TelescopeData) categoryCounts(column string) models.CategoryCounts {
	out := models.CategoryCounts{
		Column: column,
		Counts: []models.LabelCount{},
		Range:  d.DisplayRange(),
	}
	values, ok := d.table.Column(column)
	if !ok {
		return out
	}

	counts := make(map[string]int)
	for _, v := range values {
		if models.IsMissing(v) {
			continue
		}
		counts[categoryLabel(v)]++
	}
	for label, n := range counts {
		out.Counts = append(out.Counts, models.LabelCount{Label: label, Count: n})
	}
	sort.Slice(out.Counts, func(i, j int) bool {
		if out.Counts[i].Count != out.Counts[j].Count {
			return out.Counts[i].Count > out.Counts[j].Count
		}
		return out.Counts[i].Label < out.Counts[j].Label
	})
	return out
}

func categoryLabel(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// ExposureLengthDistribution returns the raw t_exptime values. Missing or
// unparseable entries are NaN.
func (d *TelescopeData) ExposureLengthDistribution(logScale bool) models.ExposureDistribution {
	out := models.ExposureDistribution{
		Values:   []float64{},
		LogScale: logScale,
		Range:    d.DisplayRange(),
	}
	values, ok := d.table.Column(models.ColumnExposure)
	if !ok {
		return out
	}
	out.Values = make([]float64, len(values))
	for i, v := range values {
		f, ok := models.AsFloat(v)
		if !ok {
			f = math.NaN()
		}
		out.Values[i] = f
	}
	return out
}

// ColumnPair returns paired numeric samples of two columns.
func (d *TelescopeData) ColumnPair(x, y string) (models.ColumnPairs, error) {
	for _, name := range []string{x, y} {
		if !d.table.HasColumn(name) {
			return models.ColumnPairs{}, &models.ColumnError{Column: name, Err: models.ErrColumnNotFound}
		}
	}
	xs, err := d.numericColumn(x)
	if err != nil {
		return models.ColumnPairs{}, err
	}
	ys, err := d.numericColumn(y)
	if err != nil {
		return models.ColumnPairs{}, err
	}
	return models.ColumnPairs{
		XColumn: x,
		YColumn: y,
		X:       xs,
		Y:       ys,
		Range:   d.DisplayRange(),
	}, nil
}

func (d *TelescopeData) numericColumn(name string) ([]float64, error) {
	values, _ := d.table.Column(name)
	out := make([]float64, len(values))
	for i, v := range values {
		f, ok := models.AsFloat(v)
		if !ok {
			return nil, &models.ColumnError{Column: name, Err: models.ErrNonNumericColumn}
		}
		out[i] = f
	}
	return out, nil
}
