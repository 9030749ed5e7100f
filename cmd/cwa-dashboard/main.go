package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cwa-dashboard/config"
	v1 "cwa-dashboard/internal/controllers/http/v1"
	"cwa-dashboard/internal/dashboard"
	"cwa-dashboard/internal/normalizer"
	"cwa-dashboard/internal/repositories"
	"cwa-dashboard/internal/scheduler"
	"cwa-dashboard/internal/services/forecast"
	"cwa-dashboard/pkg/httpserver"
	"cwa-dashboard/pkg/logger"
	"cwa-dashboard/pkg/observe"
)

// @title CWA Agricultural Forecast Dashboard
// @version 1.0.0
// @description Normalizes the CWA agricultural weather forecast (F-A0010-001) into condition and temperature tables
// @description and serves them as a dashboard, JSON and XLSX.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Forecast
// @tag.description Normalized CWA agricultural forecast tables
// @tag.name Dashboard
// @tag.description Interactive HTML dashboard
func main() {
	ctx, cancel := context.WithCancel(context.Background())

	cnf, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load configuration: %v\n", err)
		os.Exit(1)
	}

	writers := []io.Writer{os.Stdout}
	var hook *observe.SentryHook
	if cnf.Sentry.DSN != "" {
		hook, err = observe.NewSentryHook(cnf.App.Env, cnf.App.Name, cnf.Sentry.DSN, cnf.IsDevelopment())
		if err != nil {
			fmt.Fprintf(os.Stderr, "sentry disabled: %v\n", err)
		} else {
			writers = append(writers, hook)
		}
	}

	l := logger.NewZapLogger(cnf.App.Name, writers,
		logger.WithLevel(cnf.Log.Level),
		logger.WithEnv(cnf.App.Env),
	)

	policy, err := normalizer.ParseJoinPolicy(cnf.Dashboard.JoinPolicy)
	if err != nil {
		l.Fatal("invalid join policy", map[string]any{"err": err})
	}

	coords, err := dashboard.LoadCoordinates(cnf.Dashboard.CoordinatesFile)
	if err != nil {
		l.Fatal("cannot load coordinates", map[string]any{"err": err, "file": cnf.Dashboard.CoordinatesFile})
	}

	repo, err := repositories.NewCWARepository(cnf.CWA.APIKey, repositories.CWAOptions{
		BaseURL:         cnf.CWA.BaseURL,
		Dataset:         cnf.CWA.Dataset,
		BreakerFailures: cnf.CWA.BreakerFailures,
		BreakerCooldown: cnf.CWA.BreakerCooldown,
	}, l, &http.Client{Timeout: cnf.CWA.Timeout})
	if err != nil {
		l.Fatal("cannot create forecast repository", map[string]any{"err": err})
	}

	normalize := normalizer.DefaultOptions()
	normalize.Join = policy

	service := forecast.NewService(repo, forecast.Options{
		TTL:             cnf.Cache.TTL,
		RefreshCooldown: cnf.Cache.RefreshCooldown,
		Normalize:       normalize,
	}, l)

	// With prefetch enabled the instance is ready once the first reload landed.
	ready := func() bool { return true }
	if cnf.Cache.PrefetchInterval > 0 {
		ready = func() bool {
			_, err := service.Current()
			return err == nil
		}
	}

	app := httpserver.InitFiberServer(httpserver.Options{
		AppName:      cnf.App.Name,
		ReadTimeout:  cnf.Server.ReadTimeout,
		WriteTimeout: cnf.Server.WriteTimeout,
		IdleTimeout:  cnf.Server.IdleTimeout,
		Ready:        ready,
	}, l)

	v1.NewRouter(
		app,
		service,
		v1.DashboardSettings{
			Title:          cnf.Dashboard.Title,
			Dataset:        cnf.CWA.Dataset,
			CompareDefault: cnf.Dashboard.CompareLocations,
			Coordinates:    coords,
		},
		l,
	)

	sched := scheduler.New(service, cnf.Cache.PrefetchInterval, cnf.CWA.Timeout+5*time.Second, l)
	if err := sched.Start(); err != nil {
		l.Fatal("cannot start prefetch scheduler", map[string]any{"err": err})
	}

	go func() {
		if err := app.Listen(cnf.Addr()); err != nil {
			l.Fatal("cannot run the server", map[string]any{"err": err})
		}
	}()

	l.Info("application started successfully", map[string]any{
		"port":        cnf.Server.Port,
		"dataset":     cnf.CWA.Dataset,
		"join_policy": string(policy),
		"cache_ttl":   cnf.Cache.TTL.String(),
	})

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		l.Warning("stopping application services")
		signal.Stop(sigCh)
		close(sigCh)

		sched.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = app.ShutdownWithContext(shutdownCtx)
		if hook != nil {
			hook.Flush()
		}
		_ = l.Stop()
		cancel()
	}()

	select {
	case <-sigCh:
		fmt.Println("received shutdown signal")
	case <-ctx.Done():
		fmt.Println("context cancelled")
	}
}
