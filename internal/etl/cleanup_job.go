package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/jamalkashmiri/supplypulse-backend/internal/persist"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
)

// CleanupJobParams configure the CSV normalization job.
type CleanupJobParams struct {
	Store  *persist.CSVStore
	Logger *logger.Logger
}

// NewCleanupJob builds a job that re-reads every CSV file and rewrites it
// with normalized numeric precision. Money fields end up with two decimal
// places, quality ratings with one, matching what fresh generator output
// looks like. Hand-edited or older files converge to the same shape.
func NewCleanupJob(params CleanupJobParams) (Job, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("csv store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &cleanupJob{store: params.Store, logg: params.Logger, now: time.Now}, nil
}

type cleanupJob struct {
	store *persist.CSVStore
	logg  *logger.Logger
	now   func() time.Time
}

func (j *cleanupJob) Name() string { return "csv-cleanup" }

func (j *cleanupJob) Run(ctx context.Context) error {
	counts := map[string]int{}

	orders, err := j.store.ReadOrders()
	if err != nil {
		return fmt.Errorf("csv cleanup: %w", err)
	}
	if len(orders) > 0 {
		for i := range orders {
			orders[i].UnitCost = orders[i].UnitCost.Round(2)
			orders[i].TotalValue = orders[i].TotalValue.Round(2)
			orders[i].DefectRate = orders[i].DefectRate.Round(2)
			orders[i].QualityCost = orders[i].QualityCost.Round(2)
			orders[i].LatePenalty = orders[i].LatePenalty.Round(2)
		}
		if err := j.store.RewriteOrders(orders); err != nil {
			return fmt.Errorf("csv cleanup: %w", err)
		}
	}
	counts["orders"] = len(orders)

	suppliers, err := j.store.ReadSuppliers()
	if err != nil {
		return fmt.Errorf("csv cleanup: %w", err)
	}
	if len(suppliers) > 0 {
		for i := range suppliers {
			suppliers[i].QualityRating = suppliers[i].QualityRating.Round(1)
		}
		if err := j.store.RewriteSuppliers(suppliers); err != nil {
			return fmt.Errorf("csv cleanup: %w", err)
		}
	}
	counts["suppliers"] = len(suppliers)

	products, err := j.store.ReadProducts()
	if err != nil {
		return fmt.Errorf("csv cleanup: %w", err)
	}
	if len(products) > 0 {
		for i := range products {
			products[i].UnitCost = products[i].UnitCost.Round(2)
		}
		if err := j.store.RewriteProducts(products); err != nil {
			return fmt.Errorf("csv cleanup: %w", err)
		}
	}
	counts["products"] = len(products)

	items, err := j.store.ReadInventory()
	if err != nil {
		return fmt.Errorf("csv cleanup: %w", err)
	}
	if len(items) > 0 {
		for i := range items {
			items[i].InventoryValue = items[i].InventoryValue.Round(2)
			items[i].CarryingCost = items[i].CarryingCost.Round(2)
		}
		if err := j.store.RewriteInventory(items); err != nil {
			return fmt.Errorf("csv cleanup: %w", err)
		}
	}
	counts["inventory"] = len(items)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"orders":    counts["orders"],
		"suppliers": counts["suppliers"],
		"products":  counts["products"],
		"inventory": counts["inventory"],
	})
	j.logg.Info(logCtx, "csv cleanup complete")
	return nil
}
