package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"TelescopeStatus/internal/domain/models"
	internalrepo "TelescopeStatus/internal/repository"
)

var errArchiveDown = errors.New("archive down")

type fakeArchive struct {
	mu        sync.Mutex
	missions  []string
	table     *models.Table
	queryErr  error
	goodToken string
	queries   []models.ObservationQuery
	logins    []string
	listCalls int
}

func newFakeArchive(rows ...models.Record) *fakeArchive {
	t := models.NewTable([]string{models.ColumnInstrument, models.ColumnProductType, models.ColumnExposure})
	for _, r := range rows {
		t.Append(r)
	}
	return &fakeArchive{missions: []string{"HST", "JWST", "TESS"}, table: t, goodToken: "secret"}
}

func (f *fakeArchive) Login(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, token)
	if token != f.goodToken {
		return models.ErrAuthentication
	}
	return nil
}

func (f *fakeArchive) ListMissions(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]string(nil), f.missions...), nil
}

func (f *fakeArchive) QueryObservations(_ context.Context, q models.ObservationQuery) (*models.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	out := models.NewTable(f.table.Columns)
	for _, r := range f.table.Rows {
		out.Append(r)
	}
	return out, nil
}

func (f *fakeArchive) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeMetrics struct {
	mu      sync.Mutex
	errors  map[string]int
	lookups map[string][2]int
	fetches int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: map[string]int{}, lookups: map[string][2]int{}}
}

func (m *fakeMetrics) RecordFetch(string, int, float64) {
	m.mu.Lock()
	m.fetches++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordCacheLookup(source string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.lookups[source]
	if hit {
		c[0]++
	} else {
		c[1]++
	}
	m.lookups[source] = c
}

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testDeps(a *fakeArchive) Deps {
	return Deps{
		Archive: a,
		Store:   internalrepo.NewFileTableStore(),
		Metrics: newFakeMetrics(),
		Now:     func() time.Time { return fixedNow },
	}
}

func jwstRows() []models.Record {
	return []models.Record{
		{models.ColumnInstrument: "NIRCam", models.ColumnProductType: "image", models.ColumnExposure: 100.0},
		{models.ColumnInstrument: "NIRCam", models.ColumnProductType: "cube", models.ColumnExposure: nil},
		{models.ColumnInstrument: "MIRI", models.ColumnProductType: "image", models.ColumnExposure: 2500.0},
	}
}
