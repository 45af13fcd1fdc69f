package persist

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/jamalkashmiri/supplypulse-backend/internal/generator"
	pkgerrors "github.com/jamalkashmiri/supplypulse-backend/pkg/errors"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/metrics"
)

// Target says where an entity's rows actually landed.
type Target string

const (
	TargetDatabase Target = "database"
	TargetCSV      Target = "csv"
	TargetNone     Target = "none"
)

// EntityResult records the outcome for one entity type. DBErr carries the
// database failure that forced a CSV fallback; it is nil in CSV-only mode.
type EntityResult struct {
	Entity string
	Target Target
	Rows   int
	DBErr  error
}

// FellBack reports whether this entity was diverted to CSV by a database
// failure.
func (r EntityResult) FellBack() bool {
	return r.Target == TargetCSV && r.DBErr != nil
}

// Result is the full per-entity outcome of one Store call.
type Result struct {
	Entities []EntityResult
}

// FallbackCount returns how many entities were diverted to CSV.
func (r Result) FallbackCount() int {
	count := 0
	for _, e := range r.Entities {
		if e.FellBack() {
			count++
		}
	}
	return count
}

// RowsPersisted returns the total rows written across all entities.
func (r Result) RowsPersisted() int {
	total := 0
	for _, e := range r.Entities {
		total += e.Rows
	}
	return total
}

// AdapterParams configure a persistence adapter. DB may be nil to run in
// CSV-only mode.
type AdapterParams struct {
	DB      DatabaseWriter
	CSV     *CSVStore
	Logger  *logger.Logger
	Metrics *metrics.PipelineMetrics
}

// Adapter writes a generated batch to the database, falling back to CSV
// per entity when the database write fails. The CSV files are the durable
// last resort, so a batch only errors when both targets reject an entity.
type Adapter struct {
	db   DatabaseWriter
	csv  *CSVStore
	logg *logger.Logger
	met  *metrics.PipelineMetrics
}

// NewAdapter builds an adapter. The CSV store and logger are mandatory.
func NewAdapter(params AdapterParams) (*Adapter, error) {
	if params.CSV == nil {
		return nil, fmt.Errorf("csv store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Adapter{
		db:   params.DB,
		csv:  params.CSV,
		logg: params.Logger,
		met:  params.Metrics,
	}, nil
}

// CSVOnly reports whether no database target is wired at all.
func (a *Adapter) CSVOnly() bool { return a.db == nil }

// Store persists one batch. Entities are written in dependency order so that
// a database that accepts masters but rejects orders still ends up
// referentially consistent.
func (a *Adapter) Store(ctx context.Context, batch generator.Batch) (Result, error) {
	var result Result
	var failed error

	steps := []struct {
		entity string
		rows   int
		dbFn   func(context.Context) error
		csvFn  func() error
	}{
		{
			entity: "suppliers",
			rows:   len(batch.Suppliers),
			dbFn:   func(ctx context.Context) error { return a.db.ReplaceSuppliers(ctx, batch.Suppliers) },
			csvFn:  func() error { return a.csv.AppendSuppliers(batch.Suppliers) },
		},
		{
			entity: "products",
			rows:   len(batch.Products),
			dbFn:   func(ctx context.Context) error { return a.db.ReplaceProducts(ctx, batch.Products) },
			csvFn:  func() error { return a.csv.AppendProducts(batch.Products) },
		},
		{
			entity: "orders",
			rows:   len(batch.Orders),
			dbFn:   func(ctx context.Context) error { return a.db.AppendOrders(ctx, batch.Orders) },
			csvFn:  func() error { return a.csv.AppendOrders(batch.Orders) },
		},
		{
			entity: "inventory",
			rows:   len(batch.Inventory),
			dbFn:   func(ctx context.Context) error { return a.db.ReplaceInventory(ctx, batch.Inventory) },
			csvFn:  func() error { return a.csv.AppendInventory(batch.Inventory) },
		},
	}

	for _, step := range steps {
		entityResult, err := a.storeEntity(ctx, step.entity, step.rows, step.dbFn, step.csvFn)
		result.Entities = append(result.Entities, entityResult)
		failed = multierr.Append(failed, err)
	}

	if failed != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodePersistence, failed, "persisting batch")
	}
	return result, nil
}

func (a *Adapter) storeEntity(ctx context.Context, entity string, rows int, dbFn func(context.Context) error, csvFn func() error) (EntityResult, error) {
	if rows == 0 {
		return EntityResult{Entity: entity, Target: TargetNone}, nil
	}

	var dbErr error
	if a.db != nil {
		dbErr = dbFn(ctx)
		if dbErr == nil {
			a.met.AddRows(entity, string(TargetDatabase), rows)
			return EntityResult{Entity: entity, Target: TargetDatabase, Rows: rows}, nil
		}
		logCtx := a.logg.WithEntity(ctx, entity)
		logCtx = a.logg.WithFields(logCtx, map[string]any{
			"rows":  rows,
			"error": dbErr.Error(),
		})
		a.logg.Warn(logCtx, "database write failed, falling back to csv")
		a.met.IncFallback(entity)
	}

	if csvErr := csvFn(); csvErr != nil {
		err := multierr.Append(dbErr, csvErr)
		return EntityResult{Entity: entity, Target: TargetNone, DBErr: dbErr},
			fmt.Errorf("%s: %w", entity, err)
	}

	a.met.AddRows(entity, string(TargetCSV), rows)
	return EntityResult{Entity: entity, Target: TargetCSV, Rows: rows, DBErr: dbErr}, nil
}
