package etl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jamalkashmiri/supplypulse-backend/internal/generator"
	"github.com/jamalkashmiri/supplypulse-backend/internal/persist"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/db/models"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/metrics"
)

// State is the driver's position in one run.
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StatePersisting State = "persisting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

const pipelineJobName = "pipeline"

// Generator produces one synthetic batch.
type Generator interface {
	Generate(ctx context.Context, params generator.Params) (generator.Batch, error)
}

// Persister stores one batch, falling back per entity.
type Persister interface {
	Store(ctx context.Context, batch generator.Batch) (persist.Result, error)
}

// RunLog is the plain-text audit trail surface the driver writes to.
type RunLog interface {
	Info(msg string) error
	Infof(format string, args ...any) error
	Warning(msg string) error
	Error(msg string) error
}

// RunSummary describes one completed or failed run.
type RunSummary struct {
	RunID         string
	State         State
	Counts        map[string]int
	CriticalItems []models.InventoryItem
	Result        persist.Result
	StartedAt     time.Time
	Elapsed       time.Duration
}

// DriverParams wire a pipeline driver.
type DriverParams struct {
	Generator Generator
	Persister Persister
	RunLog    RunLog
	Logger    *logger.Logger
	Metrics   *metrics.PipelineMetrics
}

// Driver runs the pipeline: generate, then persist, recording every step in
// the run log. One driver handles one run at a time.
type Driver struct {
	gen    Generator
	store  Persister
	runlog RunLog
	logg   *logger.Logger
	met    *metrics.PipelineMetrics

	now func() time.Time

	mu    sync.Mutex
	state State
}

// NewDriver builds a driver in the idle state.
func NewDriver(params DriverParams) (*Driver, error) {
	if params.Generator == nil {
		return nil, fmt.Errorf("generator required")
	}
	if params.Persister == nil {
		return nil, fmt.Errorf("persister required")
	}
	if params.RunLog == nil {
		return nil, fmt.Errorf("run log required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Driver{
		gen:    params.Generator,
		store:  params.Persister,
		runlog: params.RunLog,
		logg:   params.Logger,
		met:    params.Metrics,
		now:    time.Now,
		state:  StateIdle,
	}, nil
}

// State returns the driver's current state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Driver) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

// Run executes one pipeline pass. The returned summary is valid even when
// err is non-nil; its State field says how far the run got.
func (d *Driver) Run(ctx context.Context, params generator.Params) (RunSummary, error) {
	runID := uuid.NewString()
	ctx = d.logg.WithRunID(ctx, runID)
	start := d.now()

	summary := RunSummary{RunID: runID, State: StateIdle, StartedAt: start}

	d.setState(StateGenerating)
	summary.State = StateGenerating
	d.logRun("etl run %s started", runID)

	batch, err := d.gen.Generate(ctx, params)
	if err != nil {
		return d.fail(ctx, summary, start, "data generation failed", err)
	}
	summary.Counts = batch.Counts()
	summary.CriticalItems = batch.CriticalItems()
	d.logRun("generated %d suppliers, %d products, %d orders, %d inventory rows",
		len(batch.Suppliers), len(batch.Products), len(batch.Orders), len(batch.Inventory))

	d.setState(StatePersisting)
	summary.State = StatePersisting

	result, err := d.store.Store(ctx, batch)
	summary.Result = result
	d.logFallbacks(result)
	if err != nil {
		return d.fail(ctx, summary, start, "persistence failed", err)
	}

	elapsed := d.now().Sub(start)
	summary.Elapsed = elapsed
	summary.State = StateCompleted
	d.setState(StateCompleted)

	d.logRun("etl run %s completed: %d orders, %d inventory, %d products, %d suppliers persisted, %d csv fallbacks, took %s",
		runID, len(batch.Orders), len(batch.Inventory), len(batch.Products), len(batch.Suppliers),
		result.FallbackCount(), elapsed.Round(time.Millisecond))

	d.met.ObserveDuration(pipelineJobName, elapsed)
	d.met.IncSuccess(pipelineJobName)
	d.logg.Info(d.logg.WithField(ctx, "elapsed_ms", elapsed.Milliseconds()), "etl run completed")
	return summary, nil
}

func (d *Driver) fail(ctx context.Context, summary RunSummary, start time.Time, msg string, err error) (RunSummary, error) {
	summary.Elapsed = d.now().Sub(start)
	summary.State = StateFailed
	d.setState(StateFailed)

	if logErr := d.runlog.Error(fmt.Sprintf("%s: %v", msg, err)); logErr != nil {
		d.logg.Warn(d.logg.WithField(ctx, "error", logErr.Error()), "run log write failed")
	}
	d.met.IncFailure(pipelineJobName)
	d.logg.Error(ctx, msg, err)
	return summary, err
}

func (d *Driver) logFallbacks(result persist.Result) {
	for _, e := range result.Entities {
		if !e.FellBack() {
			continue
		}
		_ = d.runlog.Warning(fmt.Sprintf(
			"database write for %s failed (%v), %d rows diverted to csv", e.Entity, e.DBErr, e.Rows))
	}
}

func (d *Driver) logRun(format string, args ...any) {
	if err := d.runlog.Infof(format, args...); err != nil {
		d.logg.Warn(d.logg.WithField(context.Background(), "error", err.Error()), "run log write failed")
	}
}
