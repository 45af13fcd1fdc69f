package persist

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCSVAppendWritesHeaderOnce(t *testing.T) {
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCSVStore: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	batch := testBatch(now)

	if err := store.AppendOrders(batch.Orders); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := store.AppendOrders(batch.Orders); err != nil {
		t.Fatalf("second append: %v", err)
	}

	f, err := os.Open(filepath.Join(store.Dir(), OrdersFile))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	headerCount := 0
	lineCount := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineCount++
		if strings.HasPrefix(scanner.Text(), "order_id,") {
			headerCount++
		}
	}
	if headerCount != 1 {
		t.Errorf("header lines = %d, want 1", headerCount)
	}
	if lineCount != 3 {
		t.Errorf("total lines = %d, want header plus two rows", lineCount)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCSVStore: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	batch := testBatch(now)

	if err := store.AppendOrders(batch.Orders); err != nil {
		t.Fatalf("AppendOrders: %v", err)
	}
	if err := store.AppendInventory(batch.Inventory); err != nil {
		t.Fatalf("AppendInventory: %v", err)
	}
	if err := store.AppendSuppliers(batch.Suppliers); err != nil {
		t.Fatalf("AppendSuppliers: %v", err)
	}

	orders, err := store.ReadOrders()
	if err != nil {
		t.Fatalf("ReadOrders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	got, want := orders[0], batch.Orders[0]
	if got.OrderID != want.OrderID || got.SupplierID != want.SupplierID {
		t.Errorf("order identity mismatch: %+v", got)
	}
	if !got.TotalValue.Equal(want.TotalValue) {
		t.Errorf("total value = %s, want %s", got.TotalValue, want.TotalValue)
	}
	if !got.OrderDate.Equal(want.OrderDate.Truncate(24 * time.Hour)) {
		t.Errorf("order date = %v, want %v", got.OrderDate, want.OrderDate)
	}
	if got.MRPCompliance != want.MRPCompliance || got.SetupCompliance != want.SetupCompliance {
		t.Errorf("compliance mismatch: %+v", got)
	}

	items, err := store.ReadInventory()
	if err != nil {
		t.Fatalf("ReadInventory: %v", err)
	}
	if len(items) != 1 || items[0].StockStatus != batch.Inventory[0].StockStatus {
		t.Fatalf("inventory rows = %+v", items)
	}

	suppliers, err := store.ReadSuppliers()
	if err != nil {
		t.Fatalf("ReadSuppliers: %v", err)
	}
	if len(suppliers) != 1 || !suppliers[0].QualityRating.Equal(batch.Suppliers[0].QualityRating) {
		t.Fatalf("supplier rows = %+v", suppliers)
	}
}

func TestCSVReadMissingFileYieldsEmpty(t *testing.T) {
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCSVStore: %v", err)
	}
	orders, err := store.ReadOrders()
	if err != nil {
		t.Fatalf("ReadOrders: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("orders = %d, want 0", len(orders))
	}
}
