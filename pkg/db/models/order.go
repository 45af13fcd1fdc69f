package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jamalkashmiri/supplypulse-backend/pkg/enums"
)

// Order is a purchase order row. CreatedTimestamp is set once by the generator
// and never refreshed afterwards.
type Order struct {
	OrderID          string                 `gorm:"column:order_id;primaryKey" csv:"order_id"`
	SupplierID       string                 `gorm:"column:supplier_id;not null" csv:"supplier_id"`
	ProductID        string                 `gorm:"column:product_id;not null" csv:"product_id"`
	Category         enums.ProductCategory  `gorm:"column:category" csv:"category"`
	ABCClass         enums.ABCClass         `gorm:"column:abc_class" csv:"abc_class"`
	OrderDate        time.Time              `gorm:"column:order_date;type:date" csv:"order_date"`
	PlannedDelivery  time.Time              `gorm:"column:planned_delivery;type:date" csv:"planned_delivery"`
	DeliveryDate     time.Time              `gorm:"column:delivery_date;type:date" csv:"delivery_date"`
	Quantity         int                    `gorm:"column:quantity;not null" csv:"quantity"`
	UnitCost         decimal.Decimal        `gorm:"column:unit_cost;type:numeric(10,2)" csv:"unit_cost"`
	TotalValue       decimal.Decimal        `gorm:"column:total_value;type:numeric(12,2)" csv:"total_value"`
	LeadTime         int                    `gorm:"column:lead_time" csv:"lead_time"`
	MRPCompliance    enums.ComplianceStatus `gorm:"column:mrp_compliance" csv:"mrp_compliance"`
	SetupCompliance  enums.ComplianceStatus `gorm:"column:setup_compliance" csv:"setup_compliance"`
	DefectRate       decimal.Decimal        `gorm:"column:defect_rate;type:numeric(5,2)" csv:"defect_rate"`
	QualityCost      decimal.Decimal        `gorm:"column:quality_cost;type:numeric(10,2)" csv:"quality_cost"`
	LatePenalty      decimal.Decimal        `gorm:"column:late_penalty;type:numeric(10,2)" csv:"late_penalty"`
	CreatedTimestamp time.Time              `gorm:"column:created_timestamp;not null" csv:"created_timestamp"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime" csv:"-"`
}

// TableName implements gorm's Tabler.
func (Order) TableName() string { return "orders" }

// OnTime reports whether the order arrived no later than planned.
func (o Order) OnTime() bool {
	return !o.DeliveryDate.After(o.PlannedDelivery)
}

// FullyCompliant reports the happy-path rule: both process checks passed.
func (o Order) FullyCompliant() bool {
	return o.MRPCompliance.IsCompliant() && o.SetupCompliance.IsCompliant()
}
