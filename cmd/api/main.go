package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/jamalkashmiri/supplypulse-backend/api/routes"
	"github.com/jamalkashmiri/supplypulse-backend/internal/kpi"
	"github.com/jamalkashmiri/supplypulse-backend/internal/persist"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/config"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/db"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})

	csvStore, err := persist.NewCSVStore(cfg.CSV.Dir)
	if err != nil {
		logg.Error(ctx, "failed to prepare csv store", err)
		os.Exit(1)
	}

	serviceParams := kpi.ServiceParams{
		Fallback: kpi.NewCSVRepository(csvStore),
		Config:   cfg.KPI,
		Logger:   logg,
	}
	routerParams := routes.RouterParams{
		Config: cfg,
		Logger: logg,
	}

	if cfg.DB.Configured() {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()),
				"database unavailable, serving KPIs from csv")
		} else {
			defer dbClient.Close()
			serviceParams.Primary = kpi.NewGormRepository(dbClient)
			routerParams.DB = dbClient
		}
	} else {
		logg.Info(ctx, "no database configured, serving KPIs from csv")
	}

	if cfg.Redis.URL != "" {
		cacheClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()),
				"redis unavailable, KPI snapshots will not be cached")
		} else {
			defer cacheClient.Close()
			serviceParams.Cache = cacheClient
			routerParams.Cache = cacheClient
		}
	}

	kpiService, err := kpi.NewService(serviceParams)
	if err != nil {
		logg.Error(ctx, "failed to create KPI service", err)
		os.Exit(1)
	}
	routerParams.KPIs = kpiService
	routerParams.Alerts = kpiService

	port := cfg.App.Port
	if fromEnv := os.Getenv("PORT"); fromEnv != "" {
		port = fromEnv
	}

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           routes.NewRouter(routerParams),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", port), "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}
