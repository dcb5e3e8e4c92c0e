package models

type FigureKind string

const (
	FigurePie       FigureKind = "pie"
	FigureHistogram FigureKind = "histogram"
	FigureScatter   FigureKind = "scatter"
)

// Figure is a renderer-agnostic chart description: kind, data and title.
type Figure struct {
	Kind   FigureKind        `json:"kind"`
	Title  string            `json:"title"`
	Labels map[string]string `json:"labels,omitempty"`
	Names  []string          `json:"names,omitempty"`
	Values []float64         `json:"values,omitempty"`
	X      []float64         `json:"x,omitempty"`
	Y      []float64         `json:"y,omitempty"`
	LogY   bool              `json:"log_y,omitempty"`
	Layout Layout            `json:"layout"`
}

type Layout struct {
	XAxisTitle         string `json:"xaxis_title,omitempty"`
	YAxisTitle         string `json:"yaxis_title,omitempty"`
	TextPosition       string `json:"text_position,omitempty"`
	UniformTextMinSize int    `json:"uniformtext_minsize,omitempty"`
	UniformTextMode    string `json:"uniformtext_mode,omitempty"`
	Margin             Margin `json:"margin"`
}

type Margin struct {
	Top    int `json:"t"`
	Bottom int `json:"b"`
	Left   int `json:"l"`
	Right  int `json:"r"`
}
