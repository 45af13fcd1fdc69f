package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jamalkashmiri/supplypulse-backend/pkg/enums"
)

// Product is catalog master data.
type Product struct {
	ProductID        string                `gorm:"column:product_id;primaryKey" csv:"product_id"`
	ProductName      string                `gorm:"column:product_name;not null" csv:"product_name"`
	Category         enums.ProductCategory `gorm:"column:category" csv:"category"`
	ABCClass         enums.ABCClass        `gorm:"column:abc_class" csv:"abc_class"`
	UnitCost         decimal.Decimal       `gorm:"column:unit_cost;type:numeric(10,2)" csv:"unit_cost"`
	UpdatedTimestamp time.Time             `gorm:"column:updated_timestamp;not null" csv:"updated_timestamp"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime" csv:"-"`
}

// TableName implements gorm's Tabler.
func (Product) TableName() string { return "products" }
