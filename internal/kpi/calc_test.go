package kpi

import (
	"math"
	"testing"
	"time"

	"github.com/jamalkashmiri/supplypulse-backend/pkg/db/models"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/enums"
	pkgerrors "github.com/jamalkashmiri/supplypulse-backend/pkg/errors"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestEOQ(t *testing.T) {
	got := EOQ(1000, 50, 2)
	if !almostEqual(got, math.Sqrt(50000)) {
		t.Errorf("EOQ = %v", got)
	}
	if EOQ(1000, 50, 0) != 0 {
		t.Error("EOQ with zero holding cost should be 0")
	}
}

func TestReorderPoint(t *testing.T) {
	if got := ReorderPoint(10, 5, 20); got != 70 {
		t.Errorf("ReorderPoint = %v, want 70", got)
	}
}

func TestSafetyStock(t *testing.T) {
	// z(0.95) is about 1.6449.
	got := SafetyStock(10, 4, 0.95)
	if math.Abs(got-32.897) > 0.01 {
		t.Errorf("SafetyStock = %v, want about 32.897", got)
	}
	if SafetyStock(10, 4, 0) != 0 || SafetyStock(10, 4, 1) != 0 {
		t.Error("degenerate service levels should yield 0")
	}
}

func TestInventoryTurnover(t *testing.T) {
	if got := InventoryTurnover(1000, 250); got != 4 {
		t.Errorf("InventoryTurnover = %v, want 4", got)
	}
	if InventoryTurnover(1000, 0) != 0 {
		t.Error("zero average inventory should yield 0")
	}
}

func ordersWithDelivery(onTime, late int) []models.Order {
	planned := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	orders := make([]models.Order, 0, onTime+late)
	for i := 0; i < onTime; i++ {
		orders = append(orders, models.Order{PlannedDelivery: planned, DeliveryDate: planned})
	}
	for i := 0; i < late; i++ {
		orders = append(orders, models.Order{PlannedDelivery: planned, DeliveryDate: planned.AddDate(0, 0, 2)})
	}
	return orders
}

func TestOTDPercent(t *testing.T) {
	if got := OTDPercent(ordersWithDelivery(3, 1)); got != 75 {
		t.Errorf("OTDPercent = %v, want 75", got)
	}
	if OTDPercent(nil) != 0 {
		t.Error("no orders should yield 0")
	}
}

func TestMAPEAndForecastAccuracy(t *testing.T) {
	mape, err := MAPE([]float64{100, 200}, []float64{110, 180})
	if err != nil {
		t.Fatalf("MAPE: %v", err)
	}
	if !almostEqual(mape, 10) {
		t.Errorf("MAPE = %v, want 10", mape)
	}

	accuracy, err := ForecastAccuracy([]float64{100, 200}, []float64{110, 180})
	if err != nil {
		t.Fatalf("ForecastAccuracy: %v", err)
	}
	if !almostEqual(accuracy, 90) {
		t.Errorf("ForecastAccuracy = %v, want 90", accuracy)
	}

	if _, err := MAPE([]float64{1}, []float64{1, 2}); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidArgument) {
		t.Errorf("length mismatch error = %v", err)
	}
	if _, err := MAPE([]float64{0}, []float64{1}); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidArgument) {
		t.Errorf("zero actual error = %v", err)
	}
}

func TestABCClassify(t *testing.T) {
	got := ABCClassify([]float64{500, 300, 100, 50, 50})
	want := []enums.ABCClass{
		enums.ABCClassA, enums.ABCClassA, enums.ABCClassB, enums.ABCClassB, enums.ABCClassC,
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("class[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if len(ABCClassify(nil)) != 0 {
		t.Error("empty input should yield empty output")
	}
	for _, class := range ABCClassify([]float64{0, 0}) {
		if class != enums.ABCClassC {
			t.Errorf("zero-value items should all be C, got %s", class)
		}
	}
}

func TestProcessCompliance(t *testing.T) {
	orders := []models.Order{
		{MRPCompliance: enums.ComplianceCompliant, SetupCompliance: enums.ComplianceCompliant},
		{MRPCompliance: enums.ComplianceCompliant, SetupCompliance: enums.ComplianceCompliant},
		{MRPCompliance: enums.ComplianceCompliant, SetupCompliance: enums.ComplianceNonCompliant},
		{MRPCompliance: enums.ComplianceNonCompliant, SetupCompliance: enums.ComplianceNonCompliant},
	}
	// MRP 75%, setup 50%.
	if got := ProcessCompliance(orders); got != 62.5 {
		t.Errorf("ProcessCompliance = %v, want 62.5", got)
	}
	if ProcessCompliance(nil) != 0 {
		t.Error("no orders should yield 0")
	}
}

func TestLeadTimeStats(t *testing.T) {
	orders := []models.Order{{LeadTime: 10}, {LeadTime: 12}, {LeadTime: 14}}
	mean, stddev := LeadTimeStats(orders)
	if mean != 12 {
		t.Errorf("mean = %v, want 12", mean)
	}
	if !almostEqual(stddev, 2) {
		t.Errorf("stddev = %v, want 2", stddev)
	}

	mean, stddev = LeadTimeStats(orders[:1])
	if mean != 10 || stddev != 0 {
		t.Errorf("single-order stats = %v, %v", mean, stddev)
	}
}
