package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// Well-known MAST CAOM columns used by the dashboard charts.
const (
	ColumnInstrument  = "instrument_name"
	ColumnProductType = "dataproduct_type"
	ColumnExposure    = "t_exptime"
)

// Record is one observation row keyed by column name.
// Values are nil, string, float64 or bool.
type Record map[string]any

// Table is an ordered collection of records sharing a column set.
type Table struct {
	Columns []string
	Rows    []Record
}

// NewTable creates an empty table with the given columns.
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols, Rows: []Record{}}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) Empty() bool { return t.Len() == 0 }

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Append adds a record, normalizing its values and registering any
// column the table has not seen yet.
func (t *Table) Append(r Record) {
	row := make(Record, len(r))
	for k, v := range r {
		if !t.HasColumn(k) {
			t.Columns = append(t.Columns, k)
		}
		row[k] = NormalizeValue(v)
	}
	t.Rows = append(t.Rows, row)
}

// Column returns the values of one column in row order.
func (t *Table) Column(name string) ([]any, bool) {
	if !t.HasColumn(name) {
		return nil, false
	}
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out, true
}

// NormalizeValue folds decoded values onto the table's value domain.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case nil, string, float64, bool:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		return string(b)
	}
}

// IsMissing reports whether v represents an absent value.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case string:
		return x == ""
	}
	return false
}

// AsFloat interprets v as a number. Missing values yield NaN and ok.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), true
	case float64:
		return x, true
	case string:
		if x == "" {
			return math.NaN(), true
		}
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
