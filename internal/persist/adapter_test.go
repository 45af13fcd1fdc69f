package persist

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jamalkashmiri/supplypulse-backend/internal/generator"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/db/models"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/enums"
	pkgerrors "github.com/jamalkashmiri/supplypulse-backend/pkg/errors"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
)

type fakeWriter struct {
	failEntities map[string]error

	suppliers []models.Supplier
	products  []models.Product
	orders    []models.Order
	inventory []models.InventoryItem
}

func (f *fakeWriter) fail(entity string) error {
	if err, ok := f.failEntities[entity]; ok {
		return err
	}
	return nil
}

func (f *fakeWriter) ReplaceSuppliers(_ context.Context, suppliers []models.Supplier) error {
	if err := f.fail("suppliers"); err != nil {
		return err
	}
	f.suppliers = suppliers
	return nil
}

func (f *fakeWriter) ReplaceProducts(_ context.Context, products []models.Product) error {
	if err := f.fail("products"); err != nil {
		return err
	}
	f.products = products
	return nil
}

func (f *fakeWriter) ReplaceInventory(_ context.Context, items []models.InventoryItem) error {
	if err := f.fail("inventory"); err != nil {
		return err
	}
	f.inventory = items
	return nil
}

func (f *fakeWriter) AppendOrders(_ context.Context, orders []models.Order) error {
	if err := f.fail("orders"); err != nil {
		return err
	}
	f.orders = append(f.orders, orders...)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
}

func testBatch(now time.Time) generator.Batch {
	return generator.Batch{
		Suppliers: []models.Supplier{{
			SupplierID:       "SUP_001",
			SupplierName:     "Supplier SUP_001",
			LeadTimeTarget:   10,
			QualityRating:    decimal.RequireFromString("4.2"),
			UpdatedTimestamp: now,
		}},
		Products: []models.Product{{
			ProductID:        "PROD_001",
			ProductName:      "Product PROD_001",
			Category:         enums.CategoryElectronics,
			ABCClass:         enums.ABCClassA,
			UnitCost:         decimal.RequireFromString("250.00"),
			UpdatedTimestamp: now,
		}},
		Orders: []models.Order{{
			OrderID:          "ORD_20260301_0000",
			SupplierID:       "SUP_001",
			ProductID:        "PROD_001",
			Category:         enums.CategoryElectronics,
			ABCClass:         enums.ABCClassA,
			OrderDate:        now.AddDate(0, 0, -12),
			PlannedDelivery:  now.AddDate(0, 0, -2),
			DeliveryDate:     now.AddDate(0, 0, -1),
			Quantity:         100,
			UnitCost:         decimal.RequireFromString("250.00"),
			TotalValue:       decimal.RequireFromString("25000.00"),
			LeadTime:         11,
			MRPCompliance:    enums.ComplianceCompliant,
			SetupCompliance:  enums.ComplianceNonCompliant,
			DefectRate:       decimal.RequireFromString("1.25"),
			QualityCost:      decimal.RequireFromString("31.25"),
			LatePenalty:      decimal.RequireFromString("12.50"),
			CreatedTimestamp: now,
		}},
		Inventory: []models.InventoryItem{{
			ProductID:        "PROD_001",
			CurrentStock:     120,
			SafetyStock:      40,
			EOQ:              700,
			ReorderPoint:     80,
			InventoryValue:   decimal.RequireFromString("30000.00"),
			CarryingCost:     decimal.RequireFromString("7500.00"),
			StockStatus:      enums.StockStatusNormal,
			UpdatedTimestamp: now,
		}},
		GeneratedAt: now,
	}
}

func newTestAdapter(t *testing.T, writer DatabaseWriter) (*Adapter, *CSVStore) {
	t.Helper()
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCSVStore: %v", err)
	}
	adapter, err := NewAdapter(AdapterParams{DB: writer, CSV: store, Logger: testLogger()})
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	return adapter, store
}

func TestStoreWritesDatabaseWhenHealthy(t *testing.T) {
	writer := &fakeWriter{}
	adapter, store := newTestAdapter(t, writer)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	result, err := adapter.Store(context.Background(), testBatch(now))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if result.FallbackCount() != 0 {
		t.Errorf("fallback count = %d, want 0", result.FallbackCount())
	}
	for _, e := range result.Entities {
		if e.Target != TargetDatabase {
			t.Errorf("entity %s target = %s, want database", e.Entity, e.Target)
		}
	}
	if len(writer.orders) != 1 || len(writer.inventory) != 1 {
		t.Errorf("writer rows: orders=%d inventory=%d", len(writer.orders), len(writer.inventory))
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), OrdersFile)); !os.IsNotExist(err) {
		t.Error("orders.csv should not exist after a clean database run")
	}
}

func TestStoreFallsBackPerEntity(t *testing.T) {
	writer := &fakeWriter{failEntities: map[string]error{
		"orders": errors.New("connection refused"),
	}}
	adapter, store := newTestAdapter(t, writer)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	result, err := adapter.Store(context.Background(), testBatch(now))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if result.FallbackCount() != 1 {
		t.Fatalf("fallback count = %d, want 1", result.FallbackCount())
	}

	for _, e := range result.Entities {
		switch e.Entity {
		case "orders":
			if e.Target != TargetCSV || !e.FellBack() {
				t.Errorf("orders result = %+v, want csv fallback", e)
			}
		default:
			if e.Target != TargetDatabase {
				t.Errorf("entity %s target = %s, want database", e.Entity, e.Target)
			}
		}
	}

	orders, err := store.ReadOrders()
	if err != nil {
		t.Fatalf("ReadOrders: %v", err)
	}
	if len(orders) != 1 || orders[0].OrderID != "ORD_20260301_0000" {
		t.Fatalf("orders.csv rows = %+v", orders)
	}
}

func TestStoreCSVOnlyModeIsNotAFallback(t *testing.T) {
	adapter, store := newTestAdapter(t, nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if !adapter.CSVOnly() {
		t.Fatal("adapter should report csv-only mode")
	}

	result, err := adapter.Store(context.Background(), testBatch(now))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if result.FallbackCount() != 0 {
		t.Errorf("fallback count = %d, want 0 in csv-only mode", result.FallbackCount())
	}
	for _, e := range result.Entities {
		if e.Target != TargetCSV || e.DBErr != nil {
			t.Errorf("entity %s result = %+v, want clean csv write", e.Entity, e)
		}
	}

	suppliers, err := store.ReadSuppliers()
	if err != nil {
		t.Fatalf("ReadSuppliers: %v", err)
	}
	if len(suppliers) != 1 {
		t.Fatalf("suppliers.csv rows = %d, want 1", len(suppliers))
	}
}

func TestStoreFailsWhenBothTargetsReject(t *testing.T) {
	writer := &fakeWriter{failEntities: map[string]error{
		"suppliers": errors.New("database down"),
	}}
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCSVStore: %v", err)
	}
	// Removing the directory makes every CSV append fail too.
	if err := os.RemoveAll(store.Dir()); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	adapter, err := NewAdapter(AdapterParams{DB: writer, CSV: store, Logger: testLogger()})
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}

	_, err = adapter.Store(context.Background(), testBatch(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	if err == nil {
		t.Fatal("expected error when both targets fail")
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodePersistence) {
		t.Fatalf("error = %v, want persistence code", err)
	}
}

func TestStoreEmptyBatchTouchesNothing(t *testing.T) {
	writer := &fakeWriter{}
	adapter, store := newTestAdapter(t, writer)

	result, err := adapter.Store(context.Background(), generator.Batch{})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if result.RowsPersisted() != 0 {
		t.Errorf("rows persisted = %d, want 0", result.RowsPersisted())
	}
	for _, e := range result.Entities {
		if e.Target != TargetNone {
			t.Errorf("entity %s target = %s, want none", e.Entity, e.Target)
		}
	}
	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("data dir entries = %d, want 0", len(entries))
	}
}
