package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownTelescope   = errors.New("unknown telescope")
	ErrInvalidTimeFormat  = errors.New("improper format for time")
	ErrInvalidRange       = errors.New("start_time should be less than end_time")
	ErrUnsupportedFormat  = errors.New("unsupported table format")
	ErrMissingCacheFormat = errors.New("cache format should be given in addition to cache path")
	ErrAuthentication     = errors.New("archive authentication failed")
	ErrColumnNotFound     = errors.New("column not found")
	ErrNonNumericColumn   = errors.New("column is not numeric")
)

// UnknownTelescopeError lists the identifiers the archive does accept.
type UnknownTelescopeError struct {
	Name  string
	Valid []string
}

func (e *UnknownTelescopeError) Error() string {
	return fmt.Sprintf("invalid telescope/mission name %q, use one of: %s", e.Name, strings.Join(e.Valid, ", "))
}

func (e *UnknownTelescopeError) Unwrap() error { return ErrUnknownTelescope }

// ColumnError reports an ad-hoc comparison on an unusable column.
type ColumnError struct {
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Column)
}

func (e *ColumnError) Unwrap() error { return e.Err }
