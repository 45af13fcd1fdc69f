package controllers

import (
	"context"
	"net/http"

	"github.com/jamalkashmiri/supplypulse-backend/api/responses"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/config"
	pkgerrors "github.com/jamalkashmiri/supplypulse-backend/pkg/errors"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
)

// Pinger is any connectivity check. Nil pingers are skipped: a deployment
// without a database or Redis is still ready in CSV-only mode.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SupplyPulse-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SupplyPulse-Env", cfg.App.Env)

		components := map[string]string{}
		healthy := true

		if db != nil {
			components["database"] = "ok"
			if err := db.Ping(r.Context()); err != nil {
				components["database"] = err.Error()
				healthy = false
			}
		} else {
			components["database"] = "csv-only"
		}

		if cache != nil {
			components["redis"] = "ok"
			if err := cache.Ping(r.Context()); err != nil {
				components["redis"] = err.Error()
				healthy = false
			}
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeConnectivity, "dependency unreachable").
				WithDetails(components)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"status":     "ready",
			"components": components,
		})
	}
}
