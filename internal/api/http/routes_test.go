package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

var testTime = time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)

type stubGeocoder struct {
	candidates []weather.Candidate
	err        error
}

func (g *stubGeocoder) Name() string { return "stub" }

func (g *stubGeocoder) Geocode(context.Context, string) ([]weather.Candidate, error) {
	return g.candidates, g.err
}

type stubProvider struct {
	doc string
	err error
}

func (p *stubProvider) Name() string { return "stub-provider" }

func (p *stubProvider) Fetch(context.Context, weather.Location) (*weather.Payload, error) {
	if p.err != nil {
		return nil, p.err
	}
	return weather.DecodePayload(strings.NewReader(p.doc))
}

// forecastDoc renders a met.no-shaped document with n hourly entries.
func forecastDoc(n int) string {
	entries := make([]string, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, fmt.Sprintf(
			`{"time":%q,"data":{"instant":{"details":{"air_temperature":%d,"cloud_area_fraction":20,"wind_speed":3.4}},"next_1_hours":{"details":{"precipitation_amount":0.5}}}}`,
			testTime.Add(time.Duration(i)*time.Hour).Format(time.RFC3339), i,
		))
	}
	return `{"properties":{"timeseries":[` + strings.Join(entries, ",") + `]}}`
}

type testEnv struct {
	app   *fiber.App
	prefs *store.MemoryStore
	geo   *stubGeocoder
	prov  *stubProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clk := fakeclock.NewFakeClock(testTime)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	geo := &stubGeocoder{candidates: []weather.Candidate{{Lat: "59.91", Lon: "10.74", DisplayName: "Oslo, Norway"}}}
	prov := &stubProvider{doc: forecastDoc(30)}
	prefs := store.NewMemoryStore(clk)

	svc := weather.NewService(weather.NewResolver(geo), prov, clk, logger)
	app := NewApp(Options{
		Service:     svc,
		Preferences: prefs,
		Logger:      logger,
	})
	return &testEnv{app: app, prefs: prefs, geo: geo, prov: prov}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

type errorBody struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type lookupBody struct {
	Location weather.Location       `json:"location"`
	Icon     weather.ConditionIcon  `json:"icon"`
	Forecast weather.ForecastSeries `json:"forecast"`
	Map      weather.MapView        `json:"map"`
	View     struct {
		Title    string `json:"title"`
		Location string `json:"location"`
	} `json:"view"`
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestMessages(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/messages?lang=no", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	got := decode[struct {
		Language string            `json:"language"`
		Messages map[string]string `json:"messages"`
	}](t, body)
	if got.Language != "no" {
		t.Fatalf("expected language no, got %q", got.Language)
	}
	if got.Messages["searchPlaceholder"] != "Skriv inn stedsnavn" || got.Messages["selectLocation"] != "Velg sted" {
		t.Fatalf("unexpected messages: %v", got.Messages)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/weather/search", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	if e := decode[errorBody](t, body); !e.Error {
		t.Fatalf("expected error body, got %s", body)
	}
}

func TestSearchReturnsReport(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/weather/search?q=Oslo", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.StatusCode, body)
	}

	got := decode[lookupBody](t, body)
	if got.Location.DisplayName != "Oslo, Norway" {
		t.Fatalf("unexpected location: %+v", got.Location)
	}
	if len(got.Forecast) != weather.MaxForecastPoints {
		t.Fatalf("expected %d forecast points, got %d", weather.MaxForecastPoints, len(got.Forecast))
	}
	if got.Map.Zoom != weather.DefaultMapZoom {
		t.Fatalf("expected zoom %d, got %d", weather.DefaultMapZoom, got.Map.Zoom)
	}
	if got.View.Title != "Weather Dashboard" {
		t.Fatalf("unexpected view title: %q", got.View.Title)
	}
}

func TestSearchNotFoundIsLocalized(t *testing.T) {
	env := newTestEnv(t)
	env.geo.candidates = nil

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/weather/search?q=Atlantis&lang=no", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
	if e := decode[errorBody](t, body); e.Message != "Fant ikke stedet!" {
		t.Fatalf("unexpected message: %q", e.Message)
	}
}

func TestSearchOutOfRangeCandidateIsUpstreamFault(t *testing.T) {
	env := newTestEnv(t)
	env.geo.candidates = []weather.Candidate{{Lat: "95", Lon: "10", DisplayName: "Nowhere"}}

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/weather/search?q=Nowhere", nil))
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}
	if e := decode[errorBody](t, body); e.Message != "Weather data is incomplete" {
		t.Fatalf("unexpected message: %q", e.Message)
	}
}

func TestLookupErrorStatuses(t *testing.T) {
	tests := []struct {
		name    string
		provErr error
		doc     string
		status  int
		message string
	}{
		{"transport", fmt.Errorf("%w: connection refused", weather.ErrTransport), "", http.StatusBadGateway, "Network response was not ok"},
		{"malformed", nil, `{"properties":{"timeseries":[]}}`, http.StatusBadGateway, "Weather data is incomplete"},
		{"unexpected", errors.New("boom"), "", http.StatusBadGateway, "Network response was not ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.prov.err = tt.provErr
			env.prov.doc = tt.doc

			resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/weather/coordinates?lat=59.9&lon=10.7", nil))
			if resp.StatusCode != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.StatusCode)
			}
			if e := decode[errorBody](t, body); e.Message != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, e.Message)
			}
		})
	}
}

func TestCoordinatesValidation(t *testing.T) {
	env := newTestEnv(t)

	for _, q := range []string{"", "?lat=abc&lon=10", "?lat=10", "?lat=91&lon=0", "?lat=0&lon=-181"} {
		resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/weather/coordinates"+q, nil))
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("query %q: expected status %d, got %d", q, http.StatusBadRequest, resp.StatusCode)
		}
	}
}

func TestCoordinatesDefaultLabel(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/weather/coordinates?lat=60.39&lon=5.32", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.StatusCode, body)
	}
	got := decode[lookupBody](t, body)
	if got.Location.DisplayName != "Current Location" {
		t.Fatalf("expected default label, got %q", got.Location.DisplayName)
	}
	if got.Location.Latitude != 60.39 || got.Location.Longitude != 5.32 {
		t.Fatalf("unexpected coordinates: %+v", got.Location)
	}

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/weather/coordinates?lat=60.39&lon=5.32&lang=no", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if got := decode[lookupBody](t, body); got.Location.DisplayName != "Nåværende posisjon" {
		t.Fatalf("expected localized label, got %q", got.Location.DisplayName)
	}
}

func TestChartPNG(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/weather/chart.png?lat=59.9&lon=10.7&width=400&height=120", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	if !strings.HasPrefix(string(body), "\x89PNG") {
		t.Fatalf("expected PNG signature")
	}

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/weather/chart.png?lat=59.9&lon=10.7&width=5000", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestPreferencesLifecycle(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/preferences", strings.NewReader(`{"language":"no","theme":"dark"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, body := env.do(t, req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, resp.StatusCode, body)
	}
	created := decode[store.Preferences](t, body)
	if created.ClientID == "" || created.Language != "no" || created.Theme != "dark" {
		t.Fatalf("unexpected preferences: %+v", created)
	}

	// A lookup with the client header uses the saved language and records the location.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/weather/search?q=Oslo", nil)
	req.Header.Set(ClientIDHeader, created.ClientID)
	resp, body = env.do(t, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.StatusCode, body)
	}
	if got := decode[lookupBody](t, body); got.View.Title != "Værvarsel Dashbord" {
		t.Fatalf("expected Norwegian title, got %q", got.View.Title)
	}

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/preferences/"+created.ClientID, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	stored := decode[store.Preferences](t, body)
	if stored.LastLocation == nil || stored.LastLocation.DisplayName != "Oslo, Norway" {
		t.Fatalf("expected remembered location, got %+v", stored.LastLocation)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/preferences/"+created.ClientID, strings.NewReader(`{"language":"en","theme":"light"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, body = env.do(t, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.StatusCode, body)
	}
	updated := decode[store.Preferences](t, body)
	if updated.Language != "en" || updated.Theme != "light" {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if updated.LastLocation == nil {
		t.Fatalf("expected update to keep the last location")
	}
}

func TestPreferencesValidation(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/preferences", strings.NewReader(`{"language":"de"}`))
	req.Header.Set("Content-Type", "application/json")
	if resp, _ := env.do(t, req); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	if resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/preferences/not-a-uuid", nil)); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	missing := "7f1c6a52-3f57-4c4b-9a8e-2f0d3c1b9e11"
	if resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/preferences/"+missing, nil)); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/weather/search?q=Oslo", nil)
	req.Header.Set(ClientIDHeader, "bogus")
	if resp, _ := env.do(t, req); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestPreferencesDisabled(t *testing.T) {
	app := NewApp(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/preferences", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("expected status %d, got %d", http.StatusNotImplemented, resp.StatusCode)
	}
}
