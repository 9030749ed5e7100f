package http

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"cwa-dashboard/internal/dashboard"
	"cwa-dashboard/internal/models"
	"cwa-dashboard/internal/services/forecast"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"date must be a YYYY-MM-DD date"`
}

// SnapshotInfo identifies the refresh the data comes from.
type SnapshotInfo struct {
	ID        string                `json:"id" example:"6f1c2a7e-3c55-4f43-9a59-8f0f5b0c6b1e"`
	FetchedAt time.Time             `json:"fetched_at"`
	ExpiresAt time.Time             `json:"expires_at"`
	Normalize models.NormalizeStats `json:"normalize"`
}

type ConditionsResponse struct {
	Snapshot SnapshotInfo          `json:"snapshot"`
	Rows     []models.ConditionRow `json:"rows"`
}

type TemperaturesResponse struct {
	Snapshot SnapshotInfo            `json:"snapshot"`
	Rows     []models.TemperatureRow `json:"rows"`
}

type MergedResponse struct {
	Snapshot SnapshotInfo          `json:"snapshot"`
	Date     string                `json:"date,omitempty" example:"2024-07-01"`
	Rows     []dashboard.MergedRow `json:"rows"`
}

type MapResponse struct {
	Snapshot SnapshotInfo         `json:"snapshot"`
	Date     string               `json:"date,omitempty" example:"2024-07-01"`
	Points   []dashboard.MapPoint `json:"points"`
	Missing  []string             `json:"missing"`
}

type SeriesResponse struct {
	Snapshot  SnapshotInfo            `json:"snapshot"`
	Locations []string                `json:"locations"`
	Points    []dashboard.SeriesPoint `json:"points"`
}

type RefreshResponse struct {
	Snapshot SnapshotInfo   `json:"snapshot"`
	Cache    forecast.Stats `json:"cache"`
}

type dateQuery struct {
	Date string `query:"date" validate:"omitempty,datetime=2006-01-02"`
}

type locationsQuery struct {
	Locations string `query:"locations" validate:"omitempty,max=1024"`
}

type dashboardQuery struct {
	Date      string `query:"date" validate:"omitempty,datetime=2006-01-02"`
	Locations string `query:"locations" validate:"omitempty,max=1024"`
}

func snapshotInfo(s *forecast.Snapshot) SnapshotInfo {
	return SnapshotInfo{
		ID:        s.ID,
		FetchedAt: s.FetchedAt,
		ExpiresAt: s.ExpiresAt,
		Normalize: s.Tables.Stats,
	}
}

// parseQuery fills q from the query string and validates it.
func (r *routes) parseQuery(c *fiber.Ctx, q any) error {
	if err := c.QueryParser(q); err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	if err := r.validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return queryError(verrs[0])
		}
		return err
	}
	return nil
}

func queryError(fe validator.FieldError) error {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "datetime":
		return fmt.Errorf("%s must be a YYYY-MM-DD date", name)
	case "max":
		return fmt.Errorf("%s is too long", name)
	}
	return fmt.Errorf("%s is invalid", name)
}

func optionalDate(s string) (*models.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func splitLocations(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r *routes) badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
}

func (r *routes) upstreamFailure(c *fiber.Ctx, err error) error {
	r.l.Error(err, map[string]any{
		"path": c.Path(),
	})
	return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
		Error: "Failed to fetch forecast data: " + err.Error(),
	})
}

// GetDashboard godoc
// @Summary Forecast dashboard
// @Description Renders the map of one day, the daily table and the 7-day temperature chart. Upstream failures render the error state.
// @Tags Dashboard
// @Produce html
// @Param date query string false "Map day (YYYY-MM-DD), defaults to the first forecast day" example(2024-07-01)
// @Param locations query string false "Comma-separated chart locations, defaults to the first few" example(北部地區,中部地區)
// @Success 200 {string} string "HTML page"
// @Failure 400 {string} string "HTML error page"
// @Failure 502 {string} string "HTML error page"
// @Router / [get]
func (r *routes) handleDashboard(c *fiber.Ctx) error {
	var q dashboardQuery
	if err := r.parseQuery(c, &q); err != nil {
		return r.renderPage(c, fiber.StatusBadRequest, dashboard.ErrorPage(r.settings.Title, err))
	}
	selected, err := optionalDate(q.Date)
	if err != nil {
		return r.renderPage(c, fiber.StatusBadRequest, dashboard.ErrorPage(r.settings.Title, err))
	}

	snap, err := r.service.Snapshot(c.UserContext())
	if err != nil {
		r.l.Error(err, map[string]any{"path": c.Path()})
		return r.renderPage(c, fiber.StatusBadGateway, dashboard.ErrorPage(r.settings.Title, err))
	}

	page := dashboard.BuildPage(snap.Tables, r.settings.Coordinates, dashboard.PageOptions{
		Title:          r.settings.Title,
		Dataset:        r.settings.Dataset,
		Date:           selected,
		Compare:        splitLocations(q.Locations),
		CompareDefault: r.settings.CompareDefault,
	})
	page.SnapshotID = snap.ID
	page.FetchedAt = snap.FetchedAt

	return r.renderPage(c, fiber.StatusOK, page)
}

func (r *routes) renderPage(c *fiber.Ctx, status int, page dashboard.Page) error {
	if page.Dataset == "" {
		page.Dataset = r.settings.Dataset
	}
	var buf bytes.Buffer
	if err := dashboard.Render(&buf, page); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

// GetConditions godoc
// @Summary Weather-condition table
// @Description One row per (location, date) with condition text, code and icon category.
// @Tags Forecast
// @Produce json
// @Success 200 {object} ConditionsResponse
// @Failure 502 {object} ErrorResponse "Upstream fetch or payload failure"
// @Router /api/v1/forecast/conditions [get]
func (r *routes) handleConditions(c *fiber.Ctx) error {
	snap, err := r.service.Snapshot(c.UserContext())
	if err != nil {
		return r.upstreamFailure(c, err)
	}
	return c.JSON(ConditionsResponse{
		Snapshot: snapshotInfo(snap),
		Rows:     snap.Tables.Conditions,
	})
}

// GetTemperatures godoc
// @Summary Temperature table
// @Description One row per (location, date) with optional max and min temperatures; absent values are null.
// @Tags Forecast
// @Produce json
// @Success 200 {object} TemperaturesResponse
// @Failure 502 {object} ErrorResponse "Upstream fetch or payload failure"
// @Router /api/v1/forecast/temperatures [get]
func (r *routes) handleTemperatures(c *fiber.Ctx) error {
	snap, err := r.service.Snapshot(c.UserContext())
	if err != nil {
		return r.upstreamFailure(c, err)
	}
	return c.JSON(TemperaturesResponse{
		Snapshot: snapshotInfo(snap),
		Rows:     snap.Tables.Temperatures,
	})
}

// GetMerged godoc
// @Summary Merged daily table
// @Description Condition rows with the temperatures of the same day, sorted by location and date.
// @Tags Forecast
// @Produce json
// @Param date query string false "Only rows of this day (YYYY-MM-DD)" example(2024-07-01)
// @Success 200 {object} MergedResponse
// @Failure 400 {object} ErrorResponse "Bad request - invalid parameters"
// @Failure 502 {object} ErrorResponse "Upstream fetch or payload failure"
// @Router /api/v1/forecast/merged [get]
func (r *routes) handleMerged(c *fiber.Ctx) error {
	var q dateQuery
	if err := r.parseQuery(c, &q); err != nil {
		return r.badRequest(c, err)
	}
	day, err := optionalDate(q.Date)
	if err != nil {
		return r.badRequest(c, err)
	}

	snap, err := r.service.Snapshot(c.UserContext())
	if err != nil {
		return r.upstreamFailure(c, err)
	}

	rows := dashboard.Merge(snap.Tables)
	if day != nil {
		rows = dashboard.OnDate(rows, *day)
	}
	return c.JSON(MergedResponse{
		Snapshot: snapshotInfo(snap),
		Date:     q.Date,
		Rows:     rows,
	})
}

// GetMap godoc
// @Summary Map markers
// @Description Markers with tooltips for one day. Locations without coordinates are listed in missing.
// @Tags Forecast
// @Produce json
// @Param date query string false "Map day (YYYY-MM-DD), defaults to the first forecast day" example(2024-07-01)
// @Success 200 {object} MapResponse
// @Failure 400 {object} ErrorResponse "Bad request - invalid parameters"
// @Failure 502 {object} ErrorResponse "Upstream fetch or payload failure"
// @Router /api/v1/forecast/map [get]
func (r *routes) handleMap(c *fiber.Ctx) error {
	var q dateQuery
	if err := r.parseQuery(c, &q); err != nil {
		return r.badRequest(c, err)
	}
	day, err := optionalDate(q.Date)
	if err != nil {
		return r.badRequest(c, err)
	}

	snap, err := r.service.Snapshot(c.UserContext())
	if err != nil {
		return r.upstreamFailure(c, err)
	}

	rows := dashboard.Merge(snap.Tables)
	if day == nil {
		if dates := dashboard.Dates(rows); len(dates) > 0 {
			day = &dates[0]
		}
	}

	resp := MapResponse{
		Snapshot: snapshotInfo(snap),
		Points:   []dashboard.MapPoint{},
		Missing:  r.settings.Coordinates.Missing(dashboard.Locations(rows)),
	}
	if day != nil {
		resp.Date = day.String()
		resp.Points = dashboard.MapPoints(dashboard.OnDate(rows, *day), r.settings.Coordinates)
	}
	return c.JSON(resp)
}

// GetSeries godoc
// @Summary Temperature chart series
// @Description Long-format max/min temperature points per location and day. Absent temperatures are left out.
// @Tags Forecast
// @Produce json
// @Param locations query string false "Comma-separated locations, defaults to the first few" example(北部地區,中部地區)
// @Success 200 {object} SeriesResponse
// @Failure 400 {object} ErrorResponse "Bad request - invalid parameters"
// @Failure 502 {object} ErrorResponse "Upstream fetch or payload failure"
// @Router /api/v1/forecast/series [get]
func (r *routes) handleSeries(c *fiber.Ctx) error {
	var q locationsQuery
	if err := r.parseQuery(c, &q); err != nil {
		return r.badRequest(c, err)
	}

	snap, err := r.service.Snapshot(c.UserContext())
	if err != nil {
		return r.upstreamFailure(c, err)
	}

	rows := dashboard.Merge(snap.Tables)
	locations := splitLocations(q.Locations)
	if len(locations) == 0 {
		locations = dashboard.DefaultCompare(dashboard.Locations(rows), r.settings.CompareDefault)
	}

	return c.JSON(SeriesResponse{
		Snapshot:  snapshotInfo(snap),
		Locations: locations,
		Points:    dashboard.Series(rows, locations),
	})
}

// ExportXLSX godoc
// @Summary Export both tables as XLSX
// @Description Workbook with Conditions, Temperatures and Stats sheets.
// @Tags Forecast
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "XLSX workbook"
// @Failure 502 {object} ErrorResponse "Upstream fetch or payload failure"
// @Router /api/v1/forecast/export.xlsx [get]
func (r *routes) handleExport(c *fiber.Ctx) error {
	snap, err := r.service.Snapshot(c.UserContext())
	if err != nil {
		return r.upstreamFailure(c, err)
	}

	data, err := dashboard.ExportXLSX(snap.Tables, snap.FetchedAt)
	if err != nil {
		r.l.Error(err, map[string]any{"snapshot": snap.ID})
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to build workbook"})
	}

	c.Set(fiber.HeaderContentType, xlsxMIME)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="cwa-forecast-%s.xlsx"`, snap.FetchedAt.Format("20060102-150405")))
	return c.Send(data)
}

// RefreshForecast godoc
// @Summary Force a refresh
// @Description Drops the cached forecast and fetches it again. Forced refreshes are rate limited.
// @Tags Forecast
// @Produce json
// @Success 200 {object} RefreshResponse
// @Failure 429 {object} ErrorResponse "Refreshed too recently"
// @Failure 502 {object} ErrorResponse "Upstream fetch or payload failure"
// @Router /api/v1/forecast/refresh [post]
func (r *routes) handleRefresh(c *fiber.Ctx) error {
	snap, err := r.service.Refresh(c.UserContext())
	if errors.Is(err, forecast.ErrRefreshThrottled) {
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{Error: "Refresh requested too often, try again later"})
	}
	if err != nil {
		return r.upstreamFailure(c, err)
	}

	r.l.Info("forecast refreshed on request", map[string]any{"snapshot": snap.ID})
	return c.JSON(RefreshResponse{
		Snapshot: snapshotInfo(snap),
		Cache:    r.service.Stats(),
	})
}
