package enums

import "fmt"

// StockStatus classifies an inventory level against its safety stock and
// reorder point: below safety stock is Critical, below the reorder point is
// Low, anything else is Normal.
type StockStatus string

const (
	StockStatusNormal   StockStatus = "Normal"
	StockStatusLow      StockStatus = "Low"
	StockStatusCritical StockStatus = "Critical"
)

var validStockStatuses = []StockStatus{StockStatusNormal, StockStatusLow, StockStatusCritical}

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// Valid reports whether the status is a known stock level.
func (s StockStatus) Valid() bool {
	for _, valid := range validStockStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

// ParseStockStatus converts a raw string into a StockStatus.
func ParseStockStatus(value string) (StockStatus, error) {
	status := StockStatus(value)
	if !status.Valid() {
		return "", fmt.Errorf("invalid stock status %q", value)
	}
	return status, nil
}

// StockStatusFor derives the status from a stock level, safety stock and
// reorder point.
func StockStatusFor(currentStock, safetyStock, reorderPoint int) StockStatus {
	switch {
	case currentStock < safetyStock:
		return StockStatusCritical
	case currentStock < reorderPoint:
		return StockStatusLow
	default:
		return StockStatusNormal
	}
}
