package usecase

import (
	"fmt"
	"strings"
	"time"

	"TelescopeStatus/internal/domain/models"
	"TelescopeStatus/pkg/util"
)

// NowToken is the literal accepted in place of a timestamp for "current time".
const NowToken = "now"

// TimeRange is a validated [Start, End] query window.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// ParseTimeParam normalizes a user supplied time bound. Accepted inputs are
// time.Time, *time.Time, an ISO-8601 string or the literal "now".
func ParseTimeParam(v any, now time.Time) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case *time.Time:
		if x != nil {
			return x.UTC(), nil
		}
	case string:
		if strings.TrimSpace(x) == NowToken {
			return now.UTC(), nil
		}
		if t, ok := util.ParseTime(x); ok {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%v -> %w", v, models.ErrInvalidTimeFormat)
}

// NewTimeRange enforces start <= end.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.After(end) {
		return TimeRange{}, fmt.Errorf("%s > %s: %w", start.Format(time.RFC3339), end.Format(time.RFC3339), models.ErrInvalidRange)
	}
	return TimeRange{Start: start, End: end}, nil
}

// DefaultTimeRange is the window used when no bounds are given:
// one year before now up to now.
func DefaultTimeRange(now time.Time) TimeRange {
	now = now.UTC()
	return TimeRange{Start: now.AddDate(-1, 0, 0), End: now}
}

// Display formats both bounds for chart titles.
func (r TimeRange) Display() models.DisplayRange {
	return models.DisplayRange{Start: util.FormatDate(r.Start), End: util.FormatDate(r.End)}
}

// isUnset reports whether a time parameter was left unspecified.
func isUnset(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case time.Time:
		return x.IsZero()
	case *time.Time:
		return x == nil
	}
	return false
}

// resolveRange applies start/end overrides on top of cur.
func resolveRange(cur TimeRange, start, end any, now time.Time) (TimeRange, error) {
	r := cur
	if !isUnset(start) {
		t, err := ParseTimeParam(start, now)
		if err != nil {
			return TimeRange{}, fmt.Errorf("start_time: %w", err)
		}
		r.Start = t
	}
	if !isUnset(end) {
		t, err := ParseTimeParam(end, now)
		if err != nil {
			return TimeRange{}, fmt.Errorf("end_time: %w", err)
		}
		r.End = t
	}
	return NewTimeRange(r.Start, r.End)
}
