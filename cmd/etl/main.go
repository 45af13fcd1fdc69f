package main

import (
	"context"
	"os"

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

// One-shot pipeline run: generate a batch, persist it, write the audit trail,
// exit non-zero when the run fails.
func main() {
	logg := logger.New(logger.Options{ServiceName: "etl"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "etl"

	logg = logger.New(logger.Options{
		ServiceName: "etl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})

	runLog, err := runlog.Open(runlog.Options{
		Dir:       cfg.RunLog.Dir,
		Retention: cfg.RunLog.Retention(),
	})
	if err != nil {
		logg.Error(ctx, "failed to open run log", err)
		os.Exit(1)
	}
	defer runLog.Close()

	csvStore, err := persist.NewCSVStore(cfg.CSV.Dir)
	if err != nil {
		logg.Error(ctx, "failed to prepare csv store", err)
		os.Exit(1)
	}

	var dbWriter persist.DatabaseWriter
	if cfg.DB.Configured() {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			// An unreachable database is what the CSV fallback exists for.
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "database unavailable, continuing in csv fallback mode")
		} else {
			defer dbClient.Close()
			if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
				logg.Error(ctx, "failed to run dev migrations", err)
				os.Exit(1)
			}
			dbWriter = persist.NewGormWriter(dbClient)
		}
	} else {
		logg.Info(ctx, "no database configured, running csv-only")
	}

	pipelineMetrics := metrics.NewPipelineMetrics(prometheus.DefaultRegisterer)

	gen, err := generator.NewService(generator.ServiceParams{Config: cfg.Generator, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to create generator", err)
		os.Exit(1)
	}

	adapter, err := persist.NewAdapter(persist.AdapterParams{
		DB:      dbWriter,
		CSV:     csvStore,
		Logger:  logg,
		Metrics: pipelineMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create persistence adapter", err)
		os.Exit(1)
	}

	driver, err := etl.NewDriver(etl.DriverParams{
		Generator: gen,
		Persister: adapter,
		RunLog:    runLog,
		Logger:    logg,
		Metrics:   pipelineMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create pipeline driver", err)
		os.Exit(1)
	}

	summary, err := driver.Run(ctx, generator.Params{
		Orders:    cfg.Generator.Orders,
		Inventory: cfg.Generator.Inventory,
		Products:  cfg.Generator.Products,
		Suppliers: cfg.Generator.Suppliers,
	})
	if err != nil {
		logg.Error(ctx, "pipeline run failed", err)
		os.Exit(1)
	}

	if cfg.Alerts.Enabled {
		notifier, err := alerts.NewNotifier(cfg.Alerts, logg)
		if err != nil {
			logg.Error(ctx, "failed to create alert notifier", err)
		} else {
			notifier.NotifyCriticalItems(ctx, summary.CriticalItems)
		}
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"run_id":    summary.RunID,
		"rows":      summary.Result.RowsPersisted(),
		"fallbacks": summary.Result.FallbackCount(),
	}), "pipeline run finished")
}
