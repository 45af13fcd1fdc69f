package etl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jamalkashmiri/supplypulse-backend/internal/generator"
	"github.com/jamalkashmiri/supplypulse-backend/internal/persist"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/config"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/db/models"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
)

type fakeGenerator struct {
	batch generator.Batch
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, _ generator.Params) (generator.Batch, error) {
	return f.batch, f.err
}

type fakePersister struct {
	result persist.Result
	err    error
}

func (f *fakePersister) Store(_ context.Context, _ generator.Batch) (persist.Result, error) {
	return f.result, f.err
}

type memoryRunLog struct {
	lines []string
}

func (m *memoryRunLog) Info(msg string) error {
	m.lines = append(m.lines, "INFO - "+msg)
	return nil
}

func (m *memoryRunLog) Infof(format string, args ...any) error {
	return m.Info(fmt.Sprintf(format, args...))
}

func (m *memoryRunLog) Warning(msg string) error {
	m.lines = append(m.lines, "WARNING - "+msg)
	return nil
}

func (m *memoryRunLog) Error(msg string) error {
	m.lines = append(m.lines, "ERROR - "+msg)
	return nil
}

func (m *memoryRunLog) hasLevel(level string) bool {
	for _, line := range m.lines {
		if strings.HasPrefix(line, level+" - ") {
			return true
		}
	}
	return false
}

func etlTestLogger() *logger.Logger {
	return logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
}

func smallBatch() generator.Batch {
	return generator.Batch{
		Suppliers: []models.Supplier{{SupplierID: "SUP_001"}},
		Orders:    []models.Order{{OrderID: "ORD_1"}},
	}
}

func newTestDriver(t *testing.T, gen Generator, store Persister, rl RunLog) *Driver {
	t.Helper()
	d, err := NewDriver(DriverParams{
		Generator: gen,
		Persister: store,
		RunLog:    rl,
		Logger:    etlTestLogger(),
	})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	return d
}

func TestDriverCompletesCleanRun(t *testing.T) {
	rl := &memoryRunLog{}
	store := &fakePersister{result: persist.Result{Entities: []persist.EntityResult{
		{Entity: "suppliers", Target: persist.TargetDatabase, Rows: 1},
		{Entity: "orders", Target: persist.TargetDatabase, Rows: 1},
	}}}
	d := newTestDriver(t, &fakeGenerator{batch: smallBatch()}, store, rl)

	summary, err := d.Run(context.Background(), generator.Params{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.State != StateCompleted || d.State() != StateCompleted {
		t.Errorf("state = %s / %s, want completed", summary.State, d.State())
	}
	if summary.RunID == "" {
		t.Error("run id missing")
	}
	if rl.hasLevel("ERROR") || rl.hasLevel("WARNING") {
		t.Errorf("clean run produced warnings or errors: %v", rl.lines)
	}
	joined := strings.Join(rl.lines, "\n")
	for _, want := range []string{"started", "generated 1 suppliers", "completed"} {
		if !strings.Contains(joined, want) {
			t.Errorf("run log missing %q:\n%s", want, joined)
		}
	}
}

func TestDriverFailsOnGenerationError(t *testing.T) {
	rl := &memoryRunLog{}
	d := newTestDriver(t, &fakeGenerator{err: errors.New("bad counts")}, &fakePersister{}, rl)

	summary, err := d.Run(context.Background(), generator.Params{})
	if err == nil {
		t.Fatal("expected error")
	}
	if summary.State != StateFailed || d.State() != StateFailed {
		t.Errorf("state = %s / %s, want failed", summary.State, d.State())
	}
	if !rl.hasLevel("ERROR") {
		t.Errorf("no ERROR line recorded: %v", rl.lines)
	}
}

func TestDriverFailsOnPersistenceError(t *testing.T) {
	rl := &memoryRunLog{}
	store := &fakePersister{err: errors.New("all targets down")}
	d := newTestDriver(t, &fakeGenerator{batch: smallBatch()}, store, rl)

	summary, err := d.Run(context.Background(), generator.Params{})
	if err == nil {
		t.Fatal("expected error")
	}
	if summary.State != StateFailed {
		t.Errorf("state = %s, want failed", summary.State)
	}
	if !rl.hasLevel("ERROR") {
		t.Errorf("no ERROR line recorded: %v", rl.lines)
	}
}

func TestDriverLogsFallbackWarnings(t *testing.T) {
	rl := &memoryRunLog{}
	store := &fakePersister{result: persist.Result{Entities: []persist.EntityResult{
		{Entity: "suppliers", Target: persist.TargetDatabase, Rows: 1},
		{Entity: "orders", Target: persist.TargetCSV, Rows: 1, DBErr: errors.New("connection refused")},
	}}}
	d := newTestDriver(t, &fakeGenerator{batch: smallBatch()}, store, rl)

	summary, err := d.Run(context.Background(), generator.Params{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.State != StateCompleted {
		t.Errorf("state = %s, want completed; fallback is not a failure", summary.State)
	}
	if !rl.hasLevel("WARNING") {
		t.Errorf("no WARNING line for fallback: %v", rl.lines)
	}
	if rl.hasLevel("ERROR") {
		t.Errorf("fallback run produced ERROR lines: %v", rl.lines)
	}
}

// failingWriter rejects every database write to force the CSV path.
type failingWriter struct{}

func (failingWriter) ReplaceSuppliers(context.Context, []models.Supplier) error {
	return errors.New("connection refused")
}
func (failingWriter) ReplaceProducts(context.Context, []models.Product) error {
	return errors.New("connection refused")
}
func (failingWriter) ReplaceInventory(context.Context, []models.InventoryItem) error {
	return errors.New("connection refused")
}
func (failingWriter) AppendOrders(context.Context, []models.Order) error {
	return errors.New("connection refused")
}

func TestDriverEndToEndWithUnreachableDatabase(t *testing.T) {
	logg := etlTestLogger()

	genCfg := config.GeneratorConfig{
		LeadTimeMinDays: 5, LeadTimeMaxDays: 20,
		QualityRatingMin: 3.5, QualityRatingMax: 5.0,
		UnitCostAMin: 100, UnitCostAMax: 500,
		UnitCostBMin: 50, UnitCostBMax: 150,
		UnitCostCMin: 10, UnitCostCMax: 75,
		MRPCompliantRate: 0.85, SetupCompliantRate: 0.80,
		DelayProbability: 0.30, DelayProbabilityTrusted: 0.15,
		TrustedQualityThreshold: 4.0, CarryingCostRate: 0.25,
		AnnualDemandAssumption: 1000, QualityCostRate: 0.001,
		LatePenaltyRatePerDay: 0.0005, Seed: 7,
	}
	gen, err := generator.NewService(generator.ServiceParams{Config: genCfg, Logger: logg})
	if err != nil {
		t.Fatalf("generator.NewService: %v", err)
	}

	store, err := persist.NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCSVStore: %v", err)
	}
	adapter, err := persist.NewAdapter(persist.AdapterParams{
		DB: failingWriter{}, CSV: store, Logger: logg,
	})
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}

	rl := &memoryRunLog{}
	d := newTestDriver(t, gen, adapter, rl)

	summary, err := d.Run(context.Background(), generator.Params{
		Orders: 10, Inventory: 5, Products: 5, Suppliers: 3,
		Now: time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.State != StateCompleted {
		t.Fatalf("state = %s, want completed", summary.State)
	}
	if summary.Result.FallbackCount() != 4 {
		t.Errorf("fallbacks = %d, want 4", summary.Result.FallbackCount())
	}

	orders, err := store.ReadOrders()
	if err != nil {
		t.Fatalf("ReadOrders: %v", err)
	}
	if len(orders) != 10 {
		t.Errorf("orders.csv rows = %d, want 10", len(orders))
	}
	items, err := store.ReadInventory()
	if err != nil {
		t.Fatalf("ReadInventory: %v", err)
	}
	if len(items) != 5 {
		t.Errorf("inventory.csv rows = %d, want 5", len(items))
	}

	if rl.hasLevel("ERROR") {
		t.Errorf("fallback-only run must finish without ERROR lines: %v", rl.lines)
	}
	if !rl.hasLevel("WARNING") {
		t.Error("expected WARNING lines for the diverted entities")
	}
	var completion string
	for _, line := range rl.lines {
		if strings.Contains(line, "completed") {
			completion = line
		}
	}
	if completion == "" {
		t.Fatalf("run log missing completion summary: %v", rl.lines)
	}
	for _, want := range []string{"10 orders", "5 inventory", "5 products", "3 suppliers"} {
		if !strings.Contains(completion, want) {
			t.Errorf("completion summary missing %q: %s", want, completion)
		}
	}
}
