package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/clinicmap/internal/metrics"
	"github.com/jjenkins/clinicmap/internal/model"
)

type stubHistory struct {
	runs []model.SyncRun
	last time.Time
	err  error
}

func (s *stubHistory) ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error) {
	return s.runs, s.err
}

func (s *stubHistory) LastSync(ctx context.Context) (time.Time, error) {
	return s.last, s.err
}

func testDataset() *Dataset {
	fc := &model.FeatureCollection{
		Type: "FeatureCollection",
		Features: []model.Feature{
			{Properties: model.ClinicProperties{ID: "a", Name: "Chelsea Clinic", Borough: "Manhattan", HasPrEP: true, AcceptsMedicaid: true,
				Hours: []model.HoursProperties{{Department: "General"}}}},
			{Properties: model.ClinicProperties{ID: "b", Name: "Bronx Center", Borough: "Bronx", HasAbortion: true, WalkIn: true}},
			{Properties: model.ClinicProperties{ID: "c", Name: "Queens Health", Borough: "Queens", HasPrEP: true, HasAbortion: true}},
		},
		Metadata: model.DatasetMetadata{Source: "Airtable", TotalRecords: 4, RecordsWithCoords: 3},
	}
	virtual := []model.VirtualClinicRecord{
		{ID: "A", Name: "A", Services: model.Services{PrEP: true}},
		{ID: "B", Name: "B", Services: model.Services{Abortion: true}},
		{ID: "C", Name: "C"},
	}
	return NewDataset(fc, virtual)
}

func newTestApp(ds *Dataset, history SyncHistory) *fiber.App {
	m := metrics.NewFilterMetrics(prometheus.NewRegistry())
	app := fiber.New()
	app.Get("/", HomeHandler(ds, history, zerolog.Nop()))
	app.Get("/healthz", HealthHandler(ds))
	app.Get("/history", HistoryHandler(history, zerolog.Nop()))
	app.Get("/api/clinics", ClinicsHandler(ds, m))
	app.Get("/api/virtual-clinics", VirtualClinicsHandler(ds, m))
	app.Get("/api/quality", QualityHandler(ds))
	return app
}

type listResponse struct {
	Count   int               `json:"count"`
	Clinics []json.RawMessage `json:"clinics"`
}

func getJSON(t *testing.T, app *fiber.App, target string, out any) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestVirtualClinicsHandler(t *testing.T) {
	app := newTestApp(testDataset(), nil)

	tests := []struct {
		name    string
		target  string
		wantIDs []string
	}{
		{"no selection", "/api/virtual-clinics", []string{}},
		{"prep", "/api/virtual-clinics?services=prep", []string{"A"}},
		{"prep or abortion", "/api/virtual-clinics?services=abortion,prep", []string{"A", "B"}},
		{"unknown tag", "/api/virtual-clinics?services=astrology", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				Count   int                         `json:"count"`
				Clinics []model.VirtualClinicRecord `json:"clinics"`
			}
			status := getJSON(t, app, tt.target, &body)
			assert.Equal(t, fiber.StatusOK, status)

			ids := []string{}
			for _, c := range body.Clinics {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, len(tt.wantIDs), body.Count)
		})
	}
}

func TestFilterHandlers_TagMetricsSurviveLaterRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewFilterMetrics(reg)
	ds := testDataset()

	app := fiber.New()
	app.Get("/api/clinics", ClinicsHandler(ds, m))
	app.Get("/api/virtual-clinics", VirtualClinicsHandler(ds, m))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	for _, target := range []string{
		"/api/virtual-clinics?services=prep",
		"/api/virtual-clinics?services=abortion",
		"/api/virtual-clinics?services=sti_testing",
		"/api/virtual-clinics?services=prep",
		"/api/clinics?services=abortion,hiv_testing",
		"/api/virtual-clinics?services=astrology,numerology",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, target)
		resp.Body.Close()
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := string(raw)

	assert.Contains(t, out, `clinicmap_filter_selected_tags_total{tag="prep"} 2`)
	assert.Contains(t, out, `clinicmap_filter_selected_tags_total{tag="abortion"} 2`)
	assert.Contains(t, out, `clinicmap_filter_selected_tags_total{tag="sti_testing"} 1`)
	assert.Contains(t, out, `clinicmap_filter_selected_tags_total{tag="hiv_testing"} 1`)
	assert.Contains(t, out, `clinicmap_filter_selected_tags_total{tag="unknown"} 2`)
	assert.Equal(t, 5, strings.Count(out, "clinicmap_filter_selected_tags_total{"))
}

func TestClinicsHandler(t *testing.T) {
	app := newTestApp(testDataset(), nil)

	tests := []struct {
		name      string
		target    string
		wantCount int
	}{
		{"no criteria returns all", "/api/clinics", 3},
		{"services are AND", "/api/clinics?services=prep,abortion", 1},
		{"name search", "/api/clinics?q=bronx", 1},
		{"insurance", "/api/clinics?insurance=accepts_medicaid", 1},
		{"borough", "/api/clinics?boroughs=Queens,Bronx", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body listResponse
			status := getJSON(t, app, tt.target, &body)
			assert.Equal(t, fiber.StatusOK, status)
			assert.Equal(t, tt.wantCount, body.Count)
			assert.Len(t, body.Clinics, tt.wantCount)
		})
	}
}

func TestClinicsHandler_BadWeeks(t *testing.T) {
	app := newTestApp(testDataset(), nil)

	var body map[string]string
	status := getJSON(t, app, "/api/clinics?weeks=soon", &body)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "weeks")
}

func TestQualityHandler(t *testing.T) {
	app := newTestApp(testDataset(), nil)

	var body struct {
		Total        int      `json:"total"`
		MissingHours []string `json:"missing_hours"`
	}
	getJSON(t, app, "/api/quality", &body)
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, []string{"Bronx Center", "Queens Health"}, body.MissingHours)
}

func TestHomeHandler(t *testing.T) {
	history := &stubHistory{last: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	app := newTestApp(testDataset(), history)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<dd>3</dd>")
	assert.Contains(t, string(body), "<td>prep</td><td>2</td>")
	assert.Contains(t, string(body), "Mar 1, 2026")
}

func TestHistoryHandler(t *testing.T) {
	t.Run("lists runs", func(t *testing.T) {
		app := newTestApp(testDataset(), &stubHistory{runs: []model.SyncRun{{ID: "run-1"}}})
		resp, err := app.Test(httptest.NewRequest("GET", "/history", nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "run-1")
	})

	t.Run("store error", func(t *testing.T) {
		app := newTestApp(testDataset(), &stubHistory{err: errors.New("db down")})
		resp, err := app.Test(httptest.NewRequest("GET", "/history", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("no database", func(t *testing.T) {
		app := newTestApp(testDataset(), nil)
		resp, err := app.Test(httptest.NewRequest("GET", "/history", nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "No sync runs recorded yet.")
	})
}

func TestHealthHandler(t *testing.T) {
	app := newTestApp(testDataset(), nil)

	var body map[string]any
	getJSON(t, app, "/healthz", &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(3), body["virtual"])
}
