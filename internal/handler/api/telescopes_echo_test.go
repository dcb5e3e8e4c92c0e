package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TelescopeStatus/internal/domain/models"
	"TelescopeStatus/internal/repository"
	"TelescopeStatus/internal/service/metrics"
	"TelescopeStatus/internal/service/ratelimit"
	"TelescopeStatus/internal/usecase"
	xhttp "TelescopeStatus/pkg/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type stubArchive struct {
	rows []models.Record
}

func (s *stubArchive) Login(context.Context, string) error { return models.ErrAuthentication }

func (s *stubArchive) ListMissions(context.Context) ([]string, error) {
	return []string{"HST", "JWST", "TESS"}, nil
}

func (s *stubArchive) QueryObservations(context.Context, models.ObservationQuery) (*models.Table, error) {
	t := models.NewTable([]string{models.ColumnInstrument, models.ColumnProductType, models.ColumnExposure})
	for _, r := range s.rows {
		t.Append(r)
	}
	return t, nil
}

func newTestServer(t *testing.T, limit RateLimit) *echo.Echo {
	t.Helper()
	archive := &stubArchive{rows: []models.Record{
		{models.ColumnInstrument: "NIRCam", models.ColumnProductType: "image", models.ColumnExposure: 10.0},
		{models.ColumnInstrument: "NIRCam", models.ColumnProductType: "cube", models.ColumnExposure: 20.0},
		{models.ColumnInstrument: "MIRI", models.ColumnProductType: "image", models.ColumnExposure: 30.0},
	}}
	reg := usecase.NewRegistry(usecase.Deps{
		Archive: archive,
		Store:   repository.NewFileTableStore(),
		Now:     func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) },
	}, nil, usecase.RegistryConfig{CacheDir: t.TempDir()})

	h := NewTelescopesEchoHandler(nil, reg, ratelimit.New(), limit, metrics.NewFigureMetrics(prometheus.NewRegistry()))
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, xhttp.APIResponse) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp xhttp.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %s %s: %v (%s)", method, target, err, rec.Body.String())
	}
	return rec, resp
}

func TestList(t *testing.T) {
	e := newTestServer(t, RateLimit{})
	rec, resp := do(t, e, http.MethodGet, "/api/telescopes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := resp.Data.(map[string]interface{})
	if data["total"].(float64) != 3 {
		t.Fatalf("data = %v", data)
	}
}

func TestInstrumentsFigure(t *testing.T) {
	e := newTestServer(t, RateLimit{})
	rec, resp := do(t, e, http.MethodGet, "/api/telescopes/jwst/figures/instruments", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	fig := resp.Data.(map[string]interface{})
	if fig["kind"] != "pie" || !strings.HasPrefix(fig["title"].(string), "Instrument Usage in JWST Observations") {
		t.Fatalf("figure = %v", fig)
	}
	if rec.Header().Get(echo.HeaderCacheControl) == "" {
		t.Fatal("expected Cache-Control header")
	}
}

func TestExposureAndScatter(t *testing.T) {
	e := newTestServer(t, RateLimit{})

	rec, resp := do(t, e, http.MethodGet, "/api/telescopes/JWST/figures/exposure?log=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("exposure status = %d", rec.Code)
	}
	if fig := resp.Data.(map[string]interface{}); fig["log_y"] != true || len(fig["x"].([]interface{})) != 3 {
		t.Fatalf("exposure = %v", fig)
	}

	rec, _ = do(t, e, http.MethodGet, "/api/telescopes/JWST/figures/scatter?x=t_exptime&y=t_exptime", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("scatter status = %d", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	e := newTestServer(t, RateLimit{})
	cases := []struct {
		method, target, body string
		want                 int
	}{
		{http.MethodGet, "/api/telescopes/Kepler", "", http.StatusNotFound},
		{http.MethodGet, "/api/telescopes/JWST/figures/scatter?x=instrument_name&y=t_exptime", "", http.StatusUnprocessableEntity},
		{http.MethodGet, "/api/telescopes/JWST/figures/scatter?x=nope&y=t_exptime", "", http.StatusUnprocessableEntity},
		{http.MethodGet, "/api/telescopes/JWST/figures/scatter?x=t_exptime", "", http.StatusBadRequest},
		{http.MethodPut, "/api/telescopes/JWST", `{"start_time":"2025-01-01","end_time":"2024-01-01"}`, http.StatusBadRequest},
		{http.MethodPut, "/api/telescopes/JWST", `{"start_time":"someday"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/telescopes/JWST/export", `{"format":"parquet"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec, resp := do(t, e, tc.method, tc.target, tc.body)
		if rec.Code != tc.want || resp.Status != tc.want {
			t.Errorf("%s %s: status = %d/%d, want %d (%s)", tc.method, tc.target, rec.Code, resp.Status, tc.want, rec.Body.String())
		}
	}
}

func TestReconfigureAndExport(t *testing.T) {
	e := newTestServer(t, RateLimit{})

	rec, resp := do(t, e, http.MethodPut, "/api/telescopes/hst", `{"start_time":"2024-01-01","end_time":"2024-06-01","max_results":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	s := resp.Data.(map[string]interface{})
	if s["telescope"] != "HST" || s["max_results"].(float64) != 2 || s["rows"].(float64) != 3 {
		t.Fatalf("summary = %v", s)
	}

	rec, resp = do(t, e, http.MethodPost, "/api/telescopes/hst/export", `{"format":"csv"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("export status = %d body = %s", rec.Code, rec.Body.String())
	}
	if p := resp.Data.(map[string]interface{})["path"].(string); !strings.HasSuffix(p, ".csv") {
		t.Fatalf("path = %s", p)
	}
}

func TestReconfigureRemovesCap(t *testing.T) {
	e := newTestServer(t, RateLimit{})

	if rec, _ := do(t, e, http.MethodPut, "/api/telescopes/jwst", `{"max_results":5}`); rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	rec, resp := do(t, e, http.MethodPut, "/api/telescopes/jwst", `{"max_results":-1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if s := resp.Data.(map[string]interface{}); s["max_results"].(float64) != 0 {
		t.Fatalf("summary = %v, want cap removed", s)
	}

	if rec, _ := do(t, e, http.MethodPut, "/api/telescopes/jwst", `{"max_results":-2}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	e := newTestServer(t, RateLimit{Capacity: 2, RefillPerSec: 0.001})
	for i := 0; i < 2; i++ {
		if rec, _ := do(t, e, http.MethodGet, "/api/telescopes/JWST/figures/datatypes", ""); rec.Code != http.StatusOK {
			t.Fatalf("call %d status = %d", i, rec.Code)
		}
	}
	if rec, _ := do(t, e, http.MethodGet, "/api/telescopes/JWST/figures/datatypes", ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
}

func TestToAppError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&models.UnknownTelescopeError{Name: "x"}, http.StatusNotFound},
		{&models.ColumnError{Column: "c", Err: models.ErrNonNumericColumn}, http.StatusUnprocessableEntity},
		{models.ErrInvalidRange, http.StatusBadRequest},
		{models.ErrAuthentication, http.StatusUnauthorized},
		{usecase.ErrUnknownFigure, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := toAppError(tc.err).Status; got != tc.want {
			t.Errorf("toAppError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
