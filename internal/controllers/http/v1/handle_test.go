package http

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cwa-dashboard/internal/dashboard"
	"cwa-dashboard/internal/models"
	"cwa-dashboard/internal/services/forecast"
	"cwa-dashboard/pkg/httpserver"
	"cwa-dashboard/pkg/logger"
)

type MockForecastService struct {
	snapshot   *forecast.Snapshot
	err        error
	refreshErr error
	refreshes  int
}

func (m *MockForecastService) Snapshot(ctx context.Context) (*forecast.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

func (m *MockForecastService) Refresh(ctx context.Context) (*forecast.Snapshot, error) {
	m.refreshes++
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return m.snapshot, nil
}

func (m *MockForecastService) Stats() forecast.Stats {
	return forecast.Stats{Hits: 3, Misses: 1}
}

func ptr(v float64) *float64 { return &v }

func day(d int) models.Date { return models.NewDate(2024, 7, d) }

func testSnapshot() *forecast.Snapshot {
	fetched := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	return &forecast.Snapshot{
		ID:        "snap-1",
		FetchedAt: fetched,
		ExpiresAt: fetched.Add(10 * time.Minute),
		Tables: models.Tables{
			Conditions: []models.ConditionRow{
				{Location: "北部地區", Date: day(1), Condition: "晴", Code: "1", Icon: models.IconClear},
				{Location: "北部地區", Date: day(2), Condition: "雨", Code: "12", Icon: models.IconRain},
				{Location: "外島", Date: day(1), Condition: "多雲", Code: "3", Icon: models.IconPartlyCloudy},
			},
			Temperatures: []models.TemperatureRow{
				{Location: "北部地區", Date: day(1), MaxT: ptr(33), MinT: ptr(26)},
				{Location: "北部地區", Date: day(2), MaxT: ptr(30), MinT: nil},
				{Location: "外島", Date: day(1), MaxT: nil, MinT: nil},
			},
			Stats: models.NormalizeStats{Locations: 2},
		},
	}
}

func newTestApp(service ForecastService) *fiber.App {
	app := httpserver.InitFiberServer(httpserver.Options{AppName: "test"}, logger.Nop())
	NewRouter(app, service, DashboardSettings{
		Title:          "CWA",
		Dataset:        "F-A0010-001",
		CompareDefault: 4,
		Coordinates: dashboard.Coordinates{
			"北部地區": {Lat: 25.03, Lon: 121.56},
		},
	}, logger.Nop())
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHandleConditions(t *testing.T) {
	app := newTestApp(&MockForecastService{snapshot: testSnapshot()})

	status, body := doRequest(t, app, "GET", "/api/v1/forecast/conditions")
	require.Equal(t, fiber.StatusOK, status)

	var resp ConditionsResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "snap-1", resp.Snapshot.ID)
	assert.Equal(t, 2, resp.Snapshot.Normalize.Locations)
	require.Len(t, resp.Rows, 3)
	assert.Equal(t, "北部地區", resp.Rows[0].Location)
	assert.Equal(t, day(1), resp.Rows[0].Date)
	assert.Equal(t, models.IconClear, resp.Rows[0].Icon)
}

func TestHandleTemperatures_AbsentIsNull(t *testing.T) {
	app := newTestApp(&MockForecastService{snapshot: testSnapshot()})

	status, body := doRequest(t, app, "GET", "/api/v1/forecast/temperatures")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"min_t":null`)

	var resp TemperaturesResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Len(t, resp.Rows, 3)
	require.NotNil(t, resp.Rows[0].MaxT)
	assert.Equal(t, 33.0, *resp.Rows[0].MaxT)
	assert.Nil(t, resp.Rows[1].MinT)
}

func TestHandleMerged(t *testing.T) {
	app := newTestApp(&MockForecastService{snapshot: testSnapshot()})

	tests := []struct {
		name     string
		target   string
		status   int
		expected int
	}{
		{name: "all days", target: "/api/v1/forecast/merged", status: fiber.StatusOK, expected: 3},
		{name: "one day", target: "/api/v1/forecast/merged?date=2024-07-01", status: fiber.StatusOK, expected: 2},
		{name: "unknown day", target: "/api/v1/forecast/merged?date=2024-08-01", status: fiber.StatusOK, expected: 0},
		{name: "bad date", target: "/api/v1/forecast/merged?date=07/01/2024", status: fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, "GET", tt.target)
			require.Equal(t, tt.status, status)
			if tt.status != fiber.StatusOK {
				var e ErrorResponse
				require.NoError(t, json.Unmarshal(body, &e))
				assert.Equal(t, "date must be a YYYY-MM-DD date", e.Error)
				return
			}
			var resp MergedResponse
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.Len(t, resp.Rows, tt.expected)
		})
	}
}

func TestHandleMap(t *testing.T) {
	app := newTestApp(&MockForecastService{snapshot: testSnapshot()})

	status, body := doRequest(t, app, "GET", "/api/v1/forecast/map")
	require.Equal(t, fiber.StatusOK, status)

	var resp MapResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "2024-07-01", resp.Date)
	require.Len(t, resp.Points, 1)
	assert.Equal(t, "北部地區", resp.Points[0].Location)
	assert.Contains(t, resp.Points[0].Tooltip, "MaxT：33°C")
	assert.Equal(t, []string{"外島"}, resp.Missing)

	status, body = doRequest(t, app, "GET", "/api/v1/forecast/map?date=2024-07-02")
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Len(t, resp.Points, 1)
	assert.Contains(t, resp.Points[0].Tooltip, "MinT：—°C")
}

func TestHandleSeries(t *testing.T) {
	app := newTestApp(&MockForecastService{snapshot: testSnapshot()})

	status, body := doRequest(t, app, "GET", "/api/v1/forecast/series?locations=%E5%8C%97%E9%83%A8%E5%9C%B0%E5%8D%80")
	require.Equal(t, fiber.StatusOK, status)

	var resp SeriesResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, []string{"北部地區"}, resp.Locations)
	// 2 MaxT values and 1 MinT value, the absent MinT is left out
	assert.Len(t, resp.Points, 3)

	status, body = doRequest(t, app, "GET", "/api/v1/forecast/series")
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.ElementsMatch(t, []string{"北部地區", "外島"}, resp.Locations)
}

func TestHandlers_UpstreamFailure(t *testing.T) {
	app := newTestApp(&MockForecastService{err: errors.New("cwa request failed with status 401")})

	for _, target := range []string{
		"/api/v1/forecast/conditions",
		"/api/v1/forecast/temperatures",
		"/api/v1/forecast/merged",
		"/api/v1/forecast/map",
		"/api/v1/forecast/series",
		"/api/v1/forecast/export.xlsx",
	} {
		status, body := doRequest(t, app, "GET", target)
		assert.Equal(t, fiber.StatusBadGateway, status, target)

		var e ErrorResponse
		require.NoError(t, json.Unmarshal(body, &e), target)
		assert.Contains(t, e.Error, "status 401", target)
	}
}

func TestHandleRefresh(t *testing.T) {
	service := &MockForecastService{snapshot: testSnapshot()}
	app := newTestApp(service)

	status, body := doRequest(t, app, "POST", "/api/v1/forecast/refresh")
	require.Equal(t, fiber.StatusOK, status)

	var resp RefreshResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "snap-1", resp.Snapshot.ID)
	assert.Equal(t, 3, resp.Cache.Hits)
	assert.Equal(t, 1, service.refreshes)

	service.refreshErr = forecast.ErrRefreshThrottled
	status, _ = doRequest(t, app, "POST", "/api/v1/forecast/refresh")
	assert.Equal(t, fiber.StatusTooManyRequests, status)

	service.refreshErr = errors.New("boom")
	status, _ = doRequest(t, app, "POST", "/api/v1/forecast/refresh")
	assert.Equal(t, fiber.StatusBadGateway, status)
}

func TestHandleExport(t *testing.T) {
	app := newTestApp(&MockForecastService{snapshot: testSnapshot()})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/forecast/export.xlsx", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxMIME, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "cwa-forecast-20240701-080000.xlsx")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	// XLSX files are zip archives
	assert.True(t, strings.HasPrefix(string(body), "PK"))
}

func TestHandleDashboard(t *testing.T) {
	app := newTestApp(&MockForecastService{snapshot: testSnapshot()})

	resp, err := app.Test(httptest.NewRequest("GET", "/?date=2024-07-02", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	html := string(body)
	assert.Contains(t, html, "snapshot snap-1")
	assert.Contains(t, html, `id="map"`)
	assert.Contains(t, html, "外島")
}

func TestHandleDashboard_ErrorState(t *testing.T) {
	app := newTestApp(&MockForecastService{err: errors.New("payload shape")})

	status, body := doRequest(t, app, "GET", "/")
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Contains(t, string(body), "無法載入資料")
	assert.Contains(t, string(body), "payload shape")

	status, body = doRequest(t, app, "GET", "/?date=tomorrow")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "無法載入資料")
}
