package usecase

import (
	"fmt"
	"math"

	"TelescopeStatus/internal/domain/models"
)

const (
	labelObservations = "# of Observations"
	labelExposure     = "Exposure Length"
)

var pieLayout = models.Layout{
	TextPosition:       "inside",
	UniformTextMinSize: 12,
	UniformTextMode:    "hide",
	Margin:             models.Margin{Top: 50, Bottom: 20},
}

func titled(title string, r models.DisplayRange) string {
	return fmt.Sprintf("%s (between %s and %s)", title, r.Start, r.End)
}

// InstrumentsPie charts instrument usage.
func (d *TelescopeData) InstrumentsPie() models.Figure {
	return pieFigure(d.InstrumentUsageCounts(), "Instrument",
		fmt.Sprintf("Instrument Usage in %s Observations", d.telescope))
}

// DataTypePie charts data product types.
func (d *TelescopeData) DataTypePie() models.Figure {
	return pieFigure(d.DataTypeCounts(), "Data Product Type",
		fmt.Sprintf("Data Product Type of %s Observations", d.telescope))
}

func pieFigure(c models.CategoryCounts, name, title string) models.Figure {
	names := make([]string, len(c.Counts))
	values := make([]float64, len(c.Counts))
	for i, lc := range c.Counts {
		names[i] = lc.Label
		values[i] = float64(lc.Count)
	}
	return models.Figure{
		Kind:   models.FigurePie,
		Title:  titled(title, c.Range),
		Labels: map[string]string{c.Column: name, "count": labelObservations},
		Names:  names,
		Values: values,
		Layout: pieLayout,
	}
}

// ExposureLengthHist charts the exposure length distribution. Missing
// exposures are left out of the series.
func (d *TelescopeData) ExposureLengthHist(logScale bool) models.Figure {
	dist := d.ExposureLengthDistribution(logScale)
	xs := make([]float64, 0, len(dist.Values))
	for _, v := range dist.Values {
		if !math.IsNaN(v) {
			xs = append(xs, v)
		}
	}
	return models.Figure{
		Kind:   models.FigureHistogram,
		Title:  titled("Exposure Length of Observations", dist.Range),
		Labels: map[string]string{models.ColumnExposure: labelExposure},
		X:      xs,
		LogY:   dist.LogScale,
		Layout: models.Layout{
			XAxisTitle: labelExposure,
			YAxisTitle: labelObservations,
		},
	}
}

// CompareScatter plots two numeric columns against each other. Pairs with
// a missing side are dropped.
func (d *TelescopeData) CompareScatter(x, y string) (models.Figure, error) {
	pairs, err := d.ColumnPair(x, y)
	if err != nil {
		return models.Figure{}, err
	}
	xs := make([]float64, 0, len(pairs.X))
	ys := make([]float64, 0, len(pairs.Y))
	for i := range pairs.X {
		if math.IsNaN(pairs.X[i]) || math.IsNaN(pairs.Y[i]) {
			continue
		}
		xs = append(xs, pairs.X[i])
		ys = append(ys, pairs.Y[i])
	}
	return models.Figure{
		Kind:   models.FigureScatter,
		Title:  titled(fmt.Sprintf("%s vs %s in %s Observations", y, x, d.telescope), pairs.Range),
		Labels: map[string]string{x: x, y: y},
		X:      xs,
		Y:      ys,
		Layout: models.Layout{XAxisTitle: x, YAxisTitle: y},
	}, nil
}
