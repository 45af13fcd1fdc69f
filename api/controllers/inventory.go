package controllers

import (
	"context"
	"net/http"

	"github.com/jamalkashmiri/supplypulse-backend/api/responses"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/db/models"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
)

// AlertService lists inventory rows that need attention.
type AlertService interface {
	InventoryAlerts(ctx context.Context) ([]models.InventoryItem, error)
}

func InventoryAlerts(svc AlertService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		alerts, err := svc.InventoryAlerts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"count": len(alerts),
			"items": alerts,
		})
	}
}
