package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jamalkashmiri/supplypulse-backend/pkg/enums"
)

// InventoryItem is the stock snapshot for one product. UpdatedTimestamp is
// refreshed on every write.
type InventoryItem struct {
	ProductID        string            `gorm:"column:product_id;primaryKey" csv:"product_id"`
	CurrentStock     int               `gorm:"column:current_stock;not null" csv:"current_stock"`
	SafetyStock      int               `gorm:"column:safety_stock;not null" csv:"safety_stock"`
	EOQ              int               `gorm:"column:eoq" csv:"eoq"`
	ReorderPoint     int               `gorm:"column:rop" csv:"rop"`
	InventoryValue   decimal.Decimal   `gorm:"column:inventory_value;type:numeric(12,2)" csv:"inventory_value"`
	CarryingCost     decimal.Decimal   `gorm:"column:carrying_cost;type:numeric(10,2)" csv:"carrying_cost"`
	StockStatus      enums.StockStatus `gorm:"column:stock_status" csv:"stock_status"`
	UpdatedTimestamp time.Time         `gorm:"column:updated_timestamp;not null" csv:"updated_timestamp"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime" csv:"-"`
}

// TableName implements gorm's Tabler.
func (InventoryItem) TableName() string { return "inventory" }
