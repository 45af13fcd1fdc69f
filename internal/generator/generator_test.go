package generator

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jamalkashmiri/supplypulse-backend/pkg/config"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/enums"
	pkgerrors "github.com/jamalkashmiri/supplypulse-backend/pkg/errors"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
)

func testConfig() config.GeneratorConfig {
	return config.GeneratorConfig{
		Orders:    25,
		Inventory: 100,
		Products:  100,
		Suppliers: 20,

		LeadTimeMinDays: 5,
		LeadTimeMaxDays: 20,

		QualityRatingMin: 3.5,
		QualityRatingMax: 5.0,

		UnitCostAMin: 100,
		UnitCostAMax: 500,
		UnitCostBMin: 50,
		UnitCostBMax: 150,
		UnitCostCMin: 10,
		UnitCostCMax: 75,

		MRPCompliantRate:   0.85,
		SetupCompliantRate: 0.80,

		DelayProbability:        0.30,
		DelayProbabilityTrusted: 0.15,
		TrustedQualityThreshold: 4.0,
		CarryingCostRate:        0.25,
		AnnualDemandAssumption:  1000,
		QualityCostRate:         0.001,
		LatePenaltyRatePerDay:   0.0005,
		Seed:                    42,
	}
}

func testService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config: testConfig(),
		Logger: logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestGenerateCounts(t *testing.T) {
	svc := testService(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	batch, err := svc.Generate(context.Background(), Params{
		Orders: 25, Inventory: 50, Products: 60, Suppliers: 10, Now: now,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	counts := batch.Counts()
	want := map[string]int{"suppliers": 10, "products": 60, "orders": 25, "inventory": 50}
	for entity, n := range want {
		if counts[entity] != n {
			t.Errorf("%s count = %d, want %d", entity, counts[entity], n)
		}
	}
	if !batch.GeneratedAt.Equal(now) {
		t.Errorf("GeneratedAt = %v, want %v", batch.GeneratedAt, now)
	}
}

func TestGenerateTimestamps(t *testing.T) {
	svc := testService(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	batch, err := svc.Generate(context.Background(), Params{
		Orders: 5, Inventory: 5, Products: 10, Suppliers: 3, Now: now,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, s := range batch.Suppliers {
		if !s.UpdatedTimestamp.Equal(now) {
			t.Fatalf("supplier %s timestamp = %v, want %v", s.SupplierID, s.UpdatedTimestamp, now)
		}
	}
	for _, o := range batch.Orders {
		if !o.CreatedTimestamp.Equal(now) {
			t.Fatalf("order %s timestamp = %v, want %v", o.OrderID, o.CreatedTimestamp, now)
		}
	}
	for _, item := range batch.Inventory {
		if !item.UpdatedTimestamp.Equal(now) {
			t.Fatalf("inventory %s timestamp = %v, want %v", item.ProductID, item.UpdatedTimestamp, now)
		}
	}
}

func TestGenerateReferentialIntegrity(t *testing.T) {
	svc := testService(t)

	batch, err := svc.Generate(context.Background(), Params{
		Orders: 40, Inventory: 15, Products: 15, Suppliers: 4,
		Now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	supplierIDs := map[string]bool{}
	for _, s := range batch.Suppliers {
		supplierIDs[s.SupplierID] = true
	}
	productIDs := map[string]bool{}
	for _, p := range batch.Products {
		productIDs[p.ProductID] = true
	}

	for _, o := range batch.Orders {
		if !supplierIDs[o.SupplierID] {
			t.Errorf("order %s references unknown supplier %s", o.OrderID, o.SupplierID)
		}
		if !productIDs[o.ProductID] {
			t.Errorf("order %s references unknown product %s", o.OrderID, o.ProductID)
		}
	}

	seen := map[string]bool{}
	for _, item := range batch.Inventory {
		if !productIDs[item.ProductID] {
			t.Errorf("inventory row references unknown product %s", item.ProductID)
		}
		if seen[item.ProductID] {
			t.Errorf("duplicate inventory row for product %s", item.ProductID)
		}
		seen[item.ProductID] = true
	}
}

func TestGenerateOrderInvariants(t *testing.T) {
	svc := testService(t)

	batch, err := svc.Generate(context.Background(), Params{
		Orders: 100, Inventory: 0, Products: 20, Suppliers: 5,
		Now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, o := range batch.Orders {
		if o.Quantity <= 0 {
			t.Errorf("order %s quantity = %d", o.OrderID, o.Quantity)
		}
		if o.PlannedDelivery.Before(o.OrderDate) {
			t.Errorf("order %s planned delivery before order date", o.OrderID)
		}
		wantTotal := o.UnitCost.Mul(decimal.NewFromInt(int64(o.Quantity))).Round(2)
		if !o.TotalValue.Equal(wantTotal) {
			t.Errorf("order %s total = %s, want %s", o.OrderID, o.TotalValue, wantTotal)
		}
		defect, _ := o.DefectRate.Float64()
		if defect < 0 || defect > 100 {
			t.Errorf("order %s defect rate out of range: %v", o.OrderID, defect)
		}
		if o.LatePenalty.IsNegative() {
			t.Errorf("order %s negative late penalty", o.OrderID)
		}
	}
}

func TestGenerateInventoryStatus(t *testing.T) {
	svc := testService(t)

	batch, err := svc.Generate(context.Background(), Params{
		Inventory: 80, Products: 80, Suppliers: 1,
		Now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, item := range batch.Inventory {
		want := enums.StockStatusFor(item.CurrentStock, item.SafetyStock, item.ReorderPoint)
		if item.StockStatus != want {
			t.Errorf("product %s status = %s, want %s", item.ProductID, item.StockStatus, want)
		}
		if item.EOQ <= 0 {
			t.Errorf("product %s eoq = %d", item.ProductID, item.EOQ)
		}
		if item.ReorderPoint <= item.SafetyStock {
			t.Errorf("product %s rop %d not above safety stock %d", item.ProductID, item.ReorderPoint, item.SafetyStock)
		}
	}
}

func TestGenerateRejectsNegativeCounts(t *testing.T) {
	svc := testService(t)

	_, err := svc.Generate(context.Background(), Params{Orders: -1})
	if err == nil {
		t.Fatal("expected error for negative count")
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidArgument) {
		t.Fatalf("error code = %v, want invalid argument", err)
	}
}

func TestGenerateRejectsOrdersWithoutMasters(t *testing.T) {
	svc := testService(t)

	_, err := svc.Generate(context.Background(), Params{Orders: 5, Suppliers: 0, Products: 0})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidArgument) {
		t.Fatalf("error = %v, want invalid argument", err)
	}
}

func TestGenerateRejectsInventoryBeyondProducts(t *testing.T) {
	svc := testService(t)

	_, err := svc.Generate(context.Background(), Params{Inventory: 10, Products: 5})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidArgument) {
		t.Fatalf("error = %v, want invalid argument", err)
	}
}

func TestGenerateZeroCountsYieldEmptyBatch(t *testing.T) {
	svc := testService(t)

	batch, err := svc.Generate(context.Background(), Params{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(batch.Suppliers)+len(batch.Products)+len(batch.Orders)+len(batch.Inventory) != 0 {
		t.Fatalf("expected empty batch, got %v", batch.Counts())
	}
}

func TestGenerateSeededDeterminism(t *testing.T) {
	params := Params{
		Orders: 10, Inventory: 10, Products: 10, Suppliers: 5,
		Now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	first, err := testService(t).Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := testService(t).Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for i := range first.Orders {
		if !first.Orders[i].TotalValue.Equal(second.Orders[i].TotalValue) {
			t.Fatalf("order %d differs across seeded runs", i)
		}
	}
}

func TestNewServiceRejectsInvalidBounds(t *testing.T) {
	cfg := testConfig()
	cfg.LeadTimeMaxDays = 2 // below the minimum

	_, err := NewService(ServiceParams{Config: cfg, Logger: logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidArgument) {
		t.Fatalf("error = %v, want invalid argument", err)
	}
}
