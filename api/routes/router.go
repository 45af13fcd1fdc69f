package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jamalkashmiri/supplypulse-backend/api/controllers"
	"github.com/jamalkashmiri/supplypulse-backend/api/middleware"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/config"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
)

// RouterParams hold everything the HTTP surface needs. DB and Cache may be
// nil; the health endpoint then reports the degraded wiring instead of
// failing.
type RouterParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      controllers.Pinger
	Cache   controllers.Pinger
	KPIs    controllers.KPIService
	Alerts  controllers.AlertService
	Metrics http.Handler
}

// NewRouter builds the read-only dashboard API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(params.Logger),
		middleware.RequestID(params.Logger),
		middleware.Logging(params.Logger),
	)

	r.Get("/health/live", controllers.HealthLive(params.Config))
	r.Get("/health/ready", controllers.HealthReady(params.Config, params.Logger, params.DB, params.Cache))

	metricsHandler := params.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/kpis/summary", controllers.KPISummary(params.KPIs, params.Logger))
		r.Get("/inventory/alerts", controllers.InventoryAlerts(params.Alerts, params.Logger))
	})

	return r
}
