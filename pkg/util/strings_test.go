package util

import (
	"strings"
	"testing"
)

func TestSplitList(t *testing.T) {
	got := SplitList(" JWST, HST,,TESS ,")
	if strings.Join(got, "|") != "JWST|HST|TESS" {
		t.Fatalf("got %q", got)
	}
	if got := SplitList(""); len(got) != 0 {
		t.Fatalf("expected empty list, got %q", got)
	}
}
