package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"TelescopeStatus/internal/domain/models"
	"TelescopeStatus/internal/domain/repository"
	"TelescopeStatus/pkg/cache"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.RefreshEvent
}

func (n *recordingNotifier) Publish(ev models.RefreshEvent) {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
}

func newTestRegistry(t *testing.T, a *fakeArchive, dir string) (*Registry, *cache.MemoryCache, *recordingNotifier) {
	t.Helper()
	figs := cache.NewMemoryCache()
	t.Cleanup(func() { _ = figs.Close() })
	r := NewRegistry(testDeps(a), figs, RegistryConfig{CacheDir: dir, Format: repository.FormatBinary})
	n := &recordingNotifier{}
	r.SetNotifier(n)
	return r, figs, n
}

func TestRegistry_BuildsLazilyAndPersists(t *testing.T) {
	dir := t.TempDir()
	a := newFakeArchive(jwstRows()...)
	r, _, n := newTestRegistry(t, a, dir)

	s, err := r.Describe(context.Background(), "jwst")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if s.Telescope != "JWST" || s.Rows != 3 {
		t.Fatalf("summary = %+v", s)
	}
	if _, err := r.Describe(context.Background(), "JWST"); err != nil {
		t.Fatalf("Describe again: %v", err)
	}
	if a.queryCount() != 1 {
		t.Fatalf("queries = %d, want 1", a.queryCount())
	}
	if len(n.events) != 1 || n.events[0].Telescope != "JWST" || n.events[0].Rows != 3 {
		t.Fatalf("events = %+v", n.events)
	}

	path := r.CachePath("JWST", DefaultTimeRange(fixedNow), 0, repository.FormatBinary)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
	if !strings.HasSuffix(path, ".cbor.zst") || filepath.Dir(path) != dir {
		t.Fatalf("path = %s", path)
	}

	// A fresh registry over the same directory reads the file instead of fetching.
	b := newFakeArchive()
	r2, _, _ := newTestRegistry(t, b, dir)
	s2, err := r2.Describe(context.Background(), "JWST")
	if err != nil {
		t.Fatalf("Describe from cache: %v", err)
	}
	if s2.Rows != 3 || b.queryCount() != 0 {
		t.Fatalf("rows = %d queries = %d, want cached table", s2.Rows, b.queryCount())
	}
}

func TestRegistry_CachePathKeyedByQuery(t *testing.T) {
	r, _, _ := newTestRegistry(t, newFakeArchive(), t.TempDir())
	base := DefaultTimeRange(fixedNow)
	other := TimeRange{Start: base.Start.AddDate(0, -1, 0), End: base.End}

	p := r.CachePath("JWST", base, 0, repository.FormatCSV)
	for _, q := range []string{
		r.CachePath("HST", base, 0, repository.FormatCSV),
		r.CachePath("JWST", other, 0, repository.FormatCSV),
		r.CachePath("JWST", base, 100, repository.FormatCSV),
	} {
		if q == p {
			t.Fatalf("distinct queries share cache path %s", p)
		}
	}
	if p != r.CachePath("JWST", base, 0, repository.FormatCSV) {
		t.Fatal("cache path must be deterministic")
	}
}

func TestRegistry_Reconfigure(t *testing.T) {
	a := newFakeArchive(jwstRows()...)
	r, _, n := newTestRegistry(t, a, t.TempDir())

	s, err := r.Reconfigure(context.Background(), "JWST", "2024-01-01", "2024-03-01", 10)
	if err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if s.MaxResults != 10 || s.Start.Format("2006-01-02") != "2024-01-01" {
		t.Fatalf("summary = %+v", s)
	}

	s, err = r.Reconfigure(context.Background(), "JWST", nil, "2024-06-01", 0)
	if err != nil {
		t.Fatalf("Reconfigure end only: %v", err)
	}
	if s.Start.Format("2006-01-02") != "2024-01-01" || s.End.Format("2006-01-02") != "2024-06-01" || s.MaxResults != 10 {
		t.Fatalf("partial update lost state: %+v", s)
	}
	if a.queryCount() != 2 {
		t.Fatalf("queries = %d, want 2", a.queryCount())
	}
	last := a.queries[1]
	if last.MaxResults != 10 || last.End.Format("2006-01-02") != "2024-06-01" {
		t.Fatalf("last query = %+v", last)
	}
	if len(n.events) != 2 {
		t.Fatalf("events = %d, want 2", len(n.events))
	}

	// Returning to a previously fetched window reads its file.
	if _, err := r.Reconfigure(context.Background(), "JWST", "2024-01-01", "2024-03-01", 0); err != nil {
		t.Fatalf("Reconfigure back: %v", err)
	}
	if a.queryCount() != 2 {
		t.Fatalf("queries = %d, want cached reload", a.queryCount())
	}

	if _, err := r.Reconfigure(context.Background(), "JWST", "2025-01-01", "2024-01-01", 0); !errors.Is(err, models.ErrInvalidRange) {
		t.Fatalf("err = %v, want ErrInvalidRange", err)
	}
	if _, err := r.Reconfigure(context.Background(), "Kepler", nil, nil, 0); !errors.Is(err, models.ErrUnknownTelescope) {
		t.Fatalf("err = %v, want ErrUnknownTelescope", err)
	}
}

func TestRegistry_FigureCaching(t *testing.T) {
	a := newFakeArchive(jwstRows()...)
	r, figs, _ := newTestRegistry(t, a, t.TempDir())
	m := r.deps.Metrics.(*fakeMetrics)

	fig, err := r.Figure(context.Background(), "JWST", FigureInstruments, FigureOptions{})
	if err != nil {
		t.Fatalf("Figure: %v", err)
	}
	if fig.Kind != models.FigurePie || len(fig.Names) != 2 {
		t.Fatalf("fig = %+v", fig)
	}
	if _, err := r.Figure(context.Background(), "JWST", FigureInstruments, FigureOptions{}); err != nil {
		t.Fatalf("Figure again: %v", err)
	}
	if got := m.lookups["figure"]; got[0] != 1 || got[1] != 1 {
		t.Fatalf("figure lookups = %v, want 1 hit 1 miss", got)
	}
	if figs.Len() != 1 {
		t.Fatalf("cached figures = %d, want 1", figs.Len())
	}

	if _, err := r.Reconfigure(context.Background(), "JWST", "2024-01-01", nil, 0); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if figs.Len() != 0 {
		t.Fatalf("cached figures after reload = %d, want 0", figs.Len())
	}
}

func TestRegistry_FigureErrors(t *testing.T) {
	r, _, _ := newTestRegistry(t, newFakeArchive(jwstRows()...), t.TempDir())

	if _, err := r.Figure(context.Background(), "JWST", "radar", FigureOptions{}); !errors.Is(err, ErrUnknownFigure) {
		t.Fatalf("err = %v, want ErrUnknownFigure", err)
	}
	_, err := r.Figure(context.Background(), "JWST", FigureScatter, FigureOptions{X: "nope", Y: "t_exptime"})
	if !errors.Is(err, models.ErrColumnNotFound) {
		t.Fatalf("err = %v, want ErrColumnNotFound", err)
	}
	if _, err := r.Figure(context.Background(), "nope", FigureExposure, FigureOptions{}); !errors.Is(err, models.ErrUnknownTelescope) {
		t.Fatalf("err = %v, want ErrUnknownTelescope", err)
	}
}

func TestRegistry_Export(t *testing.T) {
	r, _, _ := newTestRegistry(t, newFakeArchive(jwstRows()...), t.TempDir())

	path, err := r.Export(context.Background(), "JWST", "csv")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasSuffix(path, ".csv") {
		t.Fatalf("path = %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export missing: %v", err)
	}
	if _, err := r.Export(context.Background(), "JWST", "xlsx"); !errors.Is(err, models.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestRegistry_Missions(t *testing.T) {
	r, _, _ := newTestRegistry(t, newFakeArchive(), t.TempDir())
	ms, err := r.Missions(context.Background())
	if err != nil || len(ms) != 3 {
		t.Fatalf("Missions = %v, %v", ms, err)
	}
}
