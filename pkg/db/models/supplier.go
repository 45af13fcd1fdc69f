package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier is performance master data. QualityRating is a 0-5 scale with one
// decimal place; LeadTimeTarget is in days.
type Supplier struct {
	SupplierID       string          `gorm:"column:supplier_id;primaryKey" csv:"supplier_id"`
	SupplierName     string          `gorm:"column:supplier_name;not null" csv:"supplier_name"`
	LeadTimeTarget   int             `gorm:"column:lead_time_target;not null" csv:"lead_time_target"`
	QualityRating    decimal.Decimal `gorm:"column:quality_rating;type:numeric(3,1)" csv:"quality_rating"`
	UpdatedTimestamp time.Time       `gorm:"column:updated_timestamp;not null" csv:"updated_timestamp"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" csv:"-"`
}

// TableName implements gorm's Tabler.
func (Supplier) TableName() string { return "suppliers" }
