package util

import (
	"strings"
	"time"
)

// DateLayout renders timestamps as YYYY-MM-DD for chart titles.
const DateLayout = "2006-01-02"

// isoLayouts lists the ISO-8601 shapes accepted by ParseTime, most specific first.
// Layouts without a zone are interpreted as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

// ParseTime tries the ISO-8601 layouts in order. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ToMJD converts t to a Modified Julian Date.
func ToMJD(t time.Time) float64 {
	const unixEpochMJD = 40587.0
	return float64(t.UnixNano())/float64(24*time.Hour) + unixEpochMJD
}
