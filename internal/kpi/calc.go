package kpi

import (
	"math"
	"sort"

	"github.com/jamalkashmiri/supplypulse-backend/pkg/db/models"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/enums"
	pkgerrors "github.com/jamalkashmiri/supplypulse-backend/pkg/errors"
)

// EOQ returns the economic order quantity for the classic square-root model.
func EOQ(annualDemand, orderingCost, holdingCost float64) float64 {
	if holdingCost <= 0 {
		return 0
	}
	return math.Sqrt((2 * annualDemand * orderingCost) / holdingCost)
}

// ReorderPoint returns demand over lead time plus the safety buffer.
func ReorderPoint(avgDemand, leadTimeDays, safetyStock float64) float64 {
	return avgDemand*leadTimeDays + safetyStock
}

// SafetyStock sizes the buffer from demand variability at a service level.
// The z-score is the inverse normal CDF of the service level.
func SafetyStock(demandStd, leadTimeDays, serviceLevel float64) float64 {
	if serviceLevel <= 0 || serviceLevel >= 1 {
		return 0
	}
	z := math.Sqrt2 * math.Erfinv(2*serviceLevel-1)
	return z * demandStd * math.Sqrt(leadTimeDays)
}

// InventoryTurnover returns cost of goods sold over average inventory value.
func InventoryTurnover(cogs, avgInventory float64) float64 {
	if avgInventory <= 0 {
		return 0
	}
	return cogs / avgInventory
}

// OTDPercent returns the share of orders delivered no later than planned.
func OTDPercent(orders []models.Order) float64 {
	if len(orders) == 0 {
		return 0
	}
	onTime := 0
	for _, o := range orders {
		if o.OnTime() {
			onTime++
		}
	}
	return float64(onTime) / float64(len(orders)) * 100
}

// MAPE returns the mean absolute percentage error between two series.
func MAPE(actual, forecast []float64) (float64, error) {
	if len(actual) == 0 || len(actual) != len(forecast) {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidArgument, "series must be non-empty and equal length")
	}
	sum := 0.0
	for i := range actual {
		if actual[i] == 0 {
			return 0, pkgerrors.New(pkgerrors.CodeInvalidArgument, "actual series contains zero")
		}
		sum += math.Abs((actual[i] - forecast[i]) / actual[i])
	}
	return sum / float64(len(actual)) * 100, nil
}

// ForecastAccuracy is 100 minus MAPE.
func ForecastAccuracy(actual, forecast []float64) (float64, error) {
	mape, err := MAPE(actual, forecast)
	if err != nil {
		return 0, err
	}
	return 100 - mape, nil
}

// ABCClassify assigns Pareto classes to total values, returned in input
// order. Items covering the first 80% of cumulative value are A, the next
// 15% are B, the tail is C.
func ABCClassify(totalValues []float64) []enums.ABCClass {
	n := len(totalValues)
	classes := make([]enums.ABCClass, n)
	if n == 0 {
		return classes
	}

	grand := 0.0
	order := make([]int, n)
	for i, v := range totalValues {
		grand += v
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return totalValues[order[a]] > totalValues[order[b]]
	})

	if grand <= 0 {
		for i := range classes {
			classes[i] = enums.ABCClassC
		}
		return classes
	}

	cumulative := 0.0
	for _, idx := range order {
		cumulative += totalValues[idx]
		pct := cumulative / grand * 100
		switch {
		case pct <= 80:
			classes[idx] = enums.ABCClassA
		case pct <= 95:
			classes[idx] = enums.ABCClassB
		default:
			classes[idx] = enums.ABCClassC
		}
	}
	return classes
}

// ProcessCompliance averages the per-step compliant percentages over the MRP
// and setup checks.
func ProcessCompliance(orders []models.Order) float64 {
	if len(orders) == 0 {
		return 0
	}
	mrp, setup := 0, 0
	for _, o := range orders {
		if o.MRPCompliance.IsCompliant() {
			mrp++
		}
		if o.SetupCompliance.IsCompliant() {
			setup++
		}
	}
	n := float64(len(orders))
	return (float64(mrp)/n*100 + float64(setup)/n*100) / 2
}

// LeadTimeStats returns the mean and sample standard deviation of lead times.
func LeadTimeStats(orders []models.Order) (mean, stddev float64) {
	if len(orders) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, o := range orders {
		sum += float64(o.LeadTime)
	}
	mean = sum / float64(len(orders))
	if len(orders) < 2 {
		return mean, 0
	}
	variance := 0.0
	for _, o := range orders {
		d := float64(o.LeadTime) - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(orders)-1))
}
