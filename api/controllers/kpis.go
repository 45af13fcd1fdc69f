package controllers

import (
	"context"
	"net/http"

	"github.com/jamalkashmiri/supplypulse-backend/api/responses"
	"github.com/jamalkashmiri/supplypulse-backend/internal/kpi"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
)

// KPIService is the read surface the dashboard endpoints consume.
type KPIService interface {
	Summary(ctx context.Context) (kpi.Summary, error)
}

func KPISummary(svc KPIService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
