package http

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "cwa-dashboard/docs"
	"cwa-dashboard/internal/dashboard"
	"cwa-dashboard/internal/services/forecast"
	"cwa-dashboard/pkg/logger"
)

// ForecastService is what the handlers need from the refresh cycle.
type ForecastService interface {
	Snapshot(ctx context.Context) (*forecast.Snapshot, error)
	Refresh(ctx context.Context) (*forecast.Snapshot, error)
	Stats() forecast.Stats
}

type DashboardSettings struct {
	Title          string
	Dataset        string
	CompareDefault int
	Coordinates    dashboard.Coordinates
}

type routes struct {
	service  ForecastService
	settings DashboardSettings
	validate *validator.Validate
	l        *logger.Logger
}

func NewRouter(
	app *fiber.App,
	service ForecastService,
	settings DashboardSettings,
	l *logger.Logger,
) {
	if settings.Coordinates == nil {
		settings.Coordinates = dashboard.Coordinates{}
	}
	r := &routes{
		service:  service,
		settings: settings,
		validate: validator.New(),
		l:        l,
	}

	app.Get("/swagger/*", swagger.New(swagger.Config{
		DeepLinking: true,
	}))

	app.Get("/", r.handleDashboard)

	api := app.Group("/api/v1/forecast")
	api.Get("/conditions", r.handleConditions)
	api.Get("/temperatures", r.handleTemperatures)
	api.Get("/merged", r.handleMerged)
	api.Get("/map", r.handleMap)
	api.Get("/series", r.handleSeries)
	api.Get("/export.xlsx", r.handleExport)
	api.Post("/refresh", r.handleRefresh)
}
