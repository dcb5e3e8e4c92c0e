package util

import (
	"math"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDateOnly(t *testing.T) {
	got, ok := ParseTime("2024-01-01")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseTimeSpaceSeparated(t *testing.T) {
	got, ok := ParseTime("2023-06-15 12:30:00.5")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Nanosecond() != 500000000 {
		t.Fatalf("unexpected fraction %d", got.Nanosecond())
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "yesterday", "1700000000", "2024-13-01"} {
		if _, ok := ParseTime(s); ok {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC)
	if got := FormatDate(ts); got != "2025-01-01" {
		t.Fatalf("got %q", got)
	}
}

func TestToMJD(t *testing.T) {
	// 2000-01-01T12:00:00Z is J2000, MJD 51544.5.
	j2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := ToMJD(j2000); math.Abs(got-51544.5) > 1e-9 {
		t.Fatalf("got %v", got)
	}
}
