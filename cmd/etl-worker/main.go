package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jamalkashmiri/supplypulse-backend/internal/alerts"
	"github.com/jamalkashmiri/supplypulse-backend/internal/etl"
	"github.com/jamalkashmiri/supplypulse-backend/internal/generator"
	"github.com/jamalkashmiri/supplypulse-backend/internal/persist"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/config"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/db"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/metrics"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/migrate"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/runlog"
)

// Scheduled worker: runs the pipeline and the CSV cleanup once a day.
func main() {
	logg := logger.New(logger.Options{ServiceName: "etl-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "etl-worker"

	logg = logger.New(logger.Options{
		ServiceName: "etl-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	runLog, err := runlog.Open(runlog.Options{
		Dir:       cfg.RunLog.Dir,
		Retention: cfg.RunLog.Retention(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to open run log", err)
		os.Exit(1)
	}
	defer runLog.Close()

	csvStore, err := persist.NewCSVStore(cfg.CSV.Dir)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare csv store", err)
		os.Exit(1)
	}

	var dbWriter persist.DatabaseWriter
	if cfg.DB.Configured() {
		dbClient, err := db.New(context.Background(), cfg.DB, logg)
		if err != nil {
			logg.Warn(logg.WithField(context.Background(), "error", err.Error()),
				"database unavailable, worker will fall back to csv")
		} else {
			defer dbClient.Close()
			if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
				logg.Error(context.Background(), "failed to run dev migrations", err)
				os.Exit(1)
			}
			dbWriter = persist.NewGormWriter(dbClient)
		}
	}

	pipelineMetrics := metrics.NewPipelineMetrics(prometheus.DefaultRegisterer)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler(nil))
	metricsServer := &http.Server{
		Addr:              ":" + cfg.Worker.MetricsPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logg.Info(logg.WithField(context.Background(), "port", cfg.Worker.MetricsPort),
			"serving worker metrics")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Warn(logg.WithField(context.Background(), "error", err.Error()),
				"metrics listener stopped")
		}
	}()
	defer metricsServer.Close()

	gen, err := generator.NewService(generator.ServiceParams{Config: cfg.Generator, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create generator", err)
		os.Exit(1)
	}

	adapter, err := persist.NewAdapter(persist.AdapterParams{
		DB:      dbWriter,
		CSV:     csvStore,
		Logger:  logg,
		Metrics: pipelineMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create persistence adapter", err)
		os.Exit(1)
	}

	// Job metrics come from the worker service; the driver stays unmetered to
	// avoid double counting.
	driver, err := etl.NewDriver(etl.DriverParams{
		Generator: gen,
		Persister: adapter,
		RunLog:    runLog,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pipeline driver", err)
		os.Exit(1)
	}

	var notifier etl.StockNotifier
	if cfg.Alerts.Enabled {
		n, err := alerts.NewNotifier(cfg.Alerts, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create alert notifier", err)
			os.Exit(1)
		}
		notifier = n
	}

	pipelineJob, err := etl.NewPipelineJob(etl.PipelineJobParams{
		Driver:   driver,
		Config:   cfg.Generator,
		Notifier: notifier,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pipeline job", err)
		os.Exit(1)
	}
	cleanupJob, err := etl.NewCleanupJob(etl.CleanupJobParams{Store: csvStore, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup job", err)
		os.Exit(1)
	}

	service, err := etl.NewService(etl.ServiceParams{
		Logger:   logg,
		Registry: etl.NewRegistry(pipelineJob, cleanupJob),
		Metrics:  pipelineMetrics,
		Interval: cfg.Worker.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting etl worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "etl worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "etl worker shutting down gracefully")
}
