package repository

import (
	"fmt"
	"strings"

	"TelescopeStatus/internal/domain/models"
)

// Format selects the on-disk table encoding.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatBinary Format = "binary"
)

// IsValidFormat returns true if f is a supported format.
func IsValidFormat(f Format) bool {
	switch f {
	case FormatCSV, FormatBinary:
		return true
	default:
		return false
	}
}

// DefaultFormat returns the format used when none is configured.
func DefaultFormat() Format { return FormatBinary }

// ParseFormat converts a raw token to a Format. Tokens are matched
// exactly after lowercasing; file extensions are never consulted.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !IsValidFormat(f) {
		return "", fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, s)
	}
	return f, nil
}

// Extension returns the file suffix used for cache files of this format.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatBinary:
		return ".cbor.zst"
	default:
		return ""
	}
}
