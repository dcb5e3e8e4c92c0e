package usecase

import (
	"errors"
	"testing"
	"time"

	"TelescopeStatus/internal/domain/models"
)

func TestParseTimeParam(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   any
		want time.Time
	}{
		{"now", "now", now},
		{"date", "2024-01-01", ts},
		{"datetime", "2024-01-01T00:00:00", ts},
		{"fraction", "2024-01-01 00:00:00.000", ts},
		{"rfc3339", "2024-01-01T01:00:00+01:00", ts},
		{"time", ts, ts},
		{"pointer", &ts, ts},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTimeParam(tc.in, now)
			if err != nil {
				t.Fatalf("ParseTimeParam(%v): %v", tc.in, err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseTimeParam_Invalid(t *testing.T) {
	var nilTime *time.Time
	for _, in := range []any{"yesterday", "NOW", "2024-13-01", 1704067200, nilTime, nil, 3.5} {
		if _, err := ParseTimeParam(in, time.Now()); !errors.Is(err, models.ErrInvalidTimeFormat) {
			t.Errorf("ParseTimeParam(%#v) err = %v, want ErrInvalidTimeFormat", in, err)
		}
	}
}

func TestNewTimeRange(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a.AddDate(1, 0, 0)

	if _, err := NewTimeRange(a, b); err != nil {
		t.Fatalf("ordered range: %v", err)
	}
	if _, err := NewTimeRange(a, a); err != nil {
		t.Fatalf("empty range must be valid: %v", err)
	}
	if _, err := NewTimeRange(b, a); !errors.Is(err, models.ErrInvalidRange) {
		t.Fatalf("err = %v, want ErrInvalidRange", err)
	}
}

func TestDefaultTimeRange(t *testing.T) {
	r := DefaultTimeRange(fixedNow)
	if !r.End.Equal(fixedNow) {
		t.Fatalf("end = %v, want %v", r.End, fixedNow)
	}
	if want := fixedNow.AddDate(-1, 0, 0); !r.Start.Equal(want) {
		t.Fatalf("start = %v, want %v", r.Start, want)
	}
	if d := r.Display(); d.Start != "2024-06-15" || d.End != "2025-06-15" {
		t.Fatalf("display = %+v", d)
	}
}

func TestResolveRange_Partial(t *testing.T) {
	cur := TimeRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	r, err := resolveRange(cur, nil, "2024-06-01", fixedNow)
	if err != nil {
		t.Fatalf("resolveRange: %v", err)
	}
	if !r.Start.Equal(cur.Start) || r.End.Format("2006-01-02") != "2024-06-01" {
		t.Fatalf("range = %+v", r)
	}
	if _, err := resolveRange(cur, "2025-06-01", "", fixedNow); !errors.Is(err, models.ErrInvalidRange) {
		t.Fatalf("err = %v, want ErrInvalidRange", err)
	}
}
