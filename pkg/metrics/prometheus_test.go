package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func TestRecorder_Fetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordFetch("JWST", 42, 1.5)

	mfs := gather(t, reg)
	rows := mfs["telescopestatus_observation_rows"]
	if rows == nil || len(rows.GetMetric()) != 1 {
		t.Fatalf("rows gauge missing: %v", rows)
	}
	if got := rows.GetMetric()[0].GetGauge().GetValue(); got != 42 {
		t.Fatalf("rows = %v, want 42", got)
	}
	hist := mfs["telescopestatus_archive_fetch_duration_seconds"]
	if hist == nil || hist.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
		t.Fatalf("fetch histogram not observed: %v", hist)
	}
}

func TestRecorder_CacheLookupAndErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordCacheLookup("figure", true)
	r.RecordCacheLookup("figure", false)
	r.RecordCacheLookup("figure", false)
	r.RecordError("fetch")

	mfs := gather(t, reg)
	lookups := mfs["telescopestatus_cache_lookups_total"]
	if lookups == nil {
		t.Fatal("cache lookups missing")
	}
	byHit := map[string]float64{}
	for _, m := range lookups.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "hit" {
				byHit[lp.GetValue()] = m.GetCounter().GetValue()
			}
		}
	}
	if byHit["true"] != 1 || byHit["false"] != 2 {
		t.Fatalf("lookups = %v", byHit)
	}
	if errs := mfs["telescopestatus_errors_total"]; errs == nil || errs.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("errors counter = %v", errs)
	}
}

func TestNew_SeparateRegistries(t *testing.T) {
	// promauto panics on duplicate registration; distinct registries must not collide.
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
