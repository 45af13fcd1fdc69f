package etl

import (
	"context"
	"fmt"

	"github.com/jamalkashmiri/supplypulse-backend/internal/generator"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/config"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/db/models"
)

// StockNotifier raises an alert when a run leaves too many items at critical
// stock. *alerts.Notifier satisfies it.
type StockNotifier interface {
	NotifyCriticalItems(ctx context.Context, items []models.InventoryItem) bool
}

// PipelineJobParams configure the scheduled pipeline job. Notifier is
// optional.
type PipelineJobParams struct {
	Driver   *Driver
	Config   config.GeneratorConfig
	Notifier StockNotifier
}

// NewPipelineJob wraps the driver as a scheduled job using the configured
// per-run record counts.
func NewPipelineJob(params PipelineJobParams) (Job, error) {
	if params.Driver == nil {
		return nil, fmt.Errorf("driver required")
	}
	return &pipelineJob{driver: params.Driver, cfg: params.Config, notifier: params.Notifier}, nil
}

type pipelineJob struct {
	driver   *Driver
	cfg      config.GeneratorConfig
	notifier StockNotifier
}

func (j *pipelineJob) Name() string { return "pipeline" }

func (j *pipelineJob) Run(ctx context.Context) error {
	summary, err := j.driver.Run(ctx, generator.Params{
		Orders:    j.cfg.Orders,
		Inventory: j.cfg.Inventory,
		Products:  j.cfg.Products,
		Suppliers: j.cfg.Suppliers,
	})
	if err != nil {
		return err
	}
	if j.notifier != nil {
		j.notifier.NotifyCriticalItems(ctx, summary.CriticalItems)
	}
	return nil
}
