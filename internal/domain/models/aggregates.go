package models

import "time"

// DisplayRange is the query range formatted for chart titles.
type DisplayRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CategoryCounts is the per-label occurrence count of one column.
type CategoryCounts struct {
	Column string       `json:"column"`
	Counts []LabelCount `json:"counts"`
	Range  DisplayRange `json:"range"`
}

// AsMap returns the counts keyed by label.
func (c CategoryCounts) AsMap() map[string]int {
	m := make(map[string]int, len(c.Counts))
	for _, lc := range c.Counts {
		m[lc.Label] = lc.Count
	}
	return m
}

// ExposureDistribution carries raw t_exptime values; missing entries are NaN.
type ExposureDistribution struct {
	Values   []float64    `json:"-"`
	LogScale bool         `json:"log_scale"`
	Range    DisplayRange `json:"range"`
}

// ColumnPairs holds paired numeric samples of two columns.
type ColumnPairs struct {
	XColumn string       `json:"x_column"`
	YColumn string       `json:"y_column"`
	X       []float64    `json:"-"`
	Y       []float64    `json:"-"`
	Range   DisplayRange `json:"range"`
}

// ObservationQuery is one archive request.
type ObservationQuery struct {
	Collection string
	Start      time.Time
	End        time.Time
	MaxResults int
}

// Summary describes a loaded telescope dataset.
type Summary struct {
	Telescope  string    `json:"telescope"`
	Start      time.Time `json:"start_time"`
	End        time.Time `json:"end_time"`
	MaxResults int       `json:"max_results"`
	Rows       int       `json:"rows"`
	Columns    []string  `json:"columns"`
}

// RefreshEvent announces that a telescope's table was replaced.
type RefreshEvent struct {
	Telescope string    `json:"telescope"`
	Rows      int       `json:"rows"`
	Start     string    `json:"start_time"`
	End       string    `json:"end_time"`
	At        time.Time `json:"at"`
}
