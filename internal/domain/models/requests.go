package models

// Requests for the telescope figure API.

type TelescopeRequest struct {
	Telescope string `param:"telescope" validate:"required,max=64"`
}

type ReconfigureRequest struct {
	Telescope  string `param:"telescope" json:"-" validate:"required,max=64"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	// MaxResults 0 keeps the current cap, -1 removes it.
	MaxResults int    `json:"max_results" validate:"gte=-1,lte=500000"`
}

type ExposureRequest struct {
	Telescope string `param:"telescope" validate:"required,max=64"`
	Log       bool   `query:"log"`
}

type ScatterRequest struct {
	Telescope string `param:"telescope" validate:"required,max=64"`
	X         string `query:"x" validate:"required"`
	Y         string `query:"y" validate:"required"`
}

type ExportRequest struct {
	Telescope string `param:"telescope" json:"-" validate:"required,max=64"`
	Format    string `json:"format" default:"binary" validate:"oneof=csv binary"`
}
