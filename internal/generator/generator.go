package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jamalkashmiri/supplypulse-backend/pkg/config"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/db/models"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/enums"
	pkgerrors "github.com/jamalkashmiri/supplypulse-backend/pkg/errors"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
)

// Params are the per-run record counts. Zero is a valid count; negative counts
// are rejected.
type Params struct {
	Orders    int
	Inventory int
	Products  int
	Suppliers int
	Now       time.Time
}

// Batch is one self-consistent set of rows across all four entity types.
// Orders only reference supplier and product IDs present in the batch.
type Batch struct {
	Suppliers   []models.Supplier
	Products    []models.Product
	Orders      []models.Order
	Inventory   []models.InventoryItem
	GeneratedAt time.Time
}

// Counts returns the per-entity row counts keyed by table name.
func (b Batch) Counts() map[string]int {
	return map[string]int{
		"suppliers": len(b.Suppliers),
		"products":  len(b.Products),
		"orders":    len(b.Orders),
		"inventory": len(b.Inventory),
	}
}

// CriticalItems returns the inventory rows generated at critical stock.
func (b Batch) CriticalItems() []models.InventoryItem {
	var critical []models.InventoryItem
	for _, item := range b.Inventory {
		if item.StockStatus == enums.StockStatusCritical {
			critical = append(critical, item)
		}
	}
	return critical
}

// ServiceParams configure the generator service.
type ServiceParams struct {
	Config config.GeneratorConfig
	Logger *logger.Logger
}

// Service produces synthetic but internally consistent supply-chain batches.
type Service struct {
	cfg  config.GeneratorConfig
	logg *logger.Logger
	rng  *rand.Rand
}

// NewService validates the configured bounds and builds a generator.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := validator.New().Struct(params.Config); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidArgument, err, "invalid generator bounds")
	}
	seed := params.Config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{
		cfg:  params.Config,
		logg: params.Logger,
		rng:  rand.New(rand.NewSource(seed)),
	}, nil
}

// Generate builds one batch. All rows carry the invocation time as their
// creation/update timestamp. The only side effect is advancing the RNG.
func (s *Service) Generate(ctx context.Context, p Params) (Batch, error) {
	if p.Orders < 0 || p.Inventory < 0 || p.Products < 0 || p.Suppliers < 0 {
		return Batch{}, pkgerrors.New(pkgerrors.CodeInvalidArgument, "record counts must be non-negative").
			WithDetails(map[string]any{
				"orders": p.Orders, "inventory": p.Inventory,
				"products": p.Products, "suppliers": p.Suppliers,
			})
	}
	if p.Orders > 0 && (p.Suppliers == 0 || p.Products == 0) {
		return Batch{}, pkgerrors.New(pkgerrors.CodeInvalidArgument, "orders require at least one supplier and one product")
	}
	if p.Inventory > p.Products {
		return Batch{}, pkgerrors.New(pkgerrors.CodeInvalidArgument, "inventory count cannot exceed product count").
			WithDetails(map[string]any{"inventory": p.Inventory, "products": p.Products})
	}

	now := p.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	batch := Batch{GeneratedAt: now}
	batch.Suppliers = s.buildSuppliers(p.Suppliers, now)
	batch.Products = s.buildProducts(p.Products, now)
	batch.Orders = s.buildOrders(p.Orders, batch.Suppliers, batch.Products, now)
	batch.Inventory = s.buildInventory(p.Inventory, batch.Products, now)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"suppliers": len(batch.Suppliers),
		"products":  len(batch.Products),
		"orders":    len(batch.Orders),
		"inventory": len(batch.Inventory),
	})
	s.logg.Info(logCtx, "synthetic batch generated")
	return batch, nil
}

func (s *Service) buildSuppliers(count int, now time.Time) []models.Supplier {
	suppliers := make([]models.Supplier, 0, count)
	for i := 1; i <= count; i++ {
		id := fmt.Sprintf("SUP_%03d", i)
		quality := s.floatBetween(s.cfg.QualityRatingMin, s.cfg.QualityRatingMax)
		suppliers = append(suppliers, models.Supplier{
			SupplierID:       id,
			SupplierName:     fmt.Sprintf("Supplier %s", id),
			LeadTimeTarget:   s.intBetween(s.cfg.LeadTimeMinDays, s.cfg.LeadTimeMaxDays),
			QualityRating:    decimal.NewFromFloat(quality).Round(1),
			UpdatedTimestamp: now,
		})
	}
	return suppliers
}

func (s *Service) buildProducts(count int, now time.Time) []models.Product {
	categories := enums.ProductCategories()
	products := make([]models.Product, 0, count)
	for i := 1; i <= count; i++ {
		id := fmt.Sprintf("PROD_%03d", i)
		class := s.pickABCClass()
		products = append(products, models.Product{
			ProductID:        id,
			ProductName:      fmt.Sprintf("Product %s", id),
			Category:         categories[s.rng.Intn(len(categories))],
			ABCClass:         class,
			UnitCost:         decimal.NewFromFloat(s.unitCostFor(class)).Round(2),
			UpdatedTimestamp: now,
		})
	}
	return products
}

func (s *Service) buildOrders(count int, suppliers []models.Supplier, products []models.Product, now time.Time) []models.Order {
	orders := make([]models.Order, 0, count)
	for i := 0; i < count; i++ {
		supplier := suppliers[s.rng.Intn(len(suppliers))]
		product := products[s.rng.Intn(len(products))]

		orderDate := midnight(now).AddDate(0, 0, -s.rng.Intn(2))
		planned := orderDate.AddDate(0, 0, supplier.LeadTimeTarget)

		quality, _ := supplier.QualityRating.Float64()
		delayProb := s.cfg.DelayProbability
		if quality > s.cfg.TrustedQualityThreshold {
			delayProb = s.cfg.DelayProbabilityTrusted
		}
		var delivery time.Time
		if s.rng.Float64() < delayProb {
			delivery = planned.AddDate(0, 0, 1+s.rng.Intn(4))
		} else {
			delivery = planned.AddDate(0, 0, -s.rng.Intn(2))
		}

		quantity := s.quantityFor(product.ABCClass)
		total := product.UnitCost.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
		totalValue, _ := total.Float64()
		leadTime := int(delivery.Sub(orderDate).Hours() / 24)

		defectRate := s.defectRateFor(quality)
		qualityCost := 0.0
		if defectRate > 1 {
			qualityCost = defectRate * totalValue * s.cfg.QualityCostRate
		}
		latePenalty := math.Max(0, float64(leadTime-supplier.LeadTimeTarget)*totalValue*s.cfg.LatePenaltyRatePerDay)

		orders = append(orders, models.Order{
			OrderID:          fmt.Sprintf("ORD_%s_%04d", now.Format("20060102"), i),
			SupplierID:       supplier.SupplierID,
			ProductID:        product.ProductID,
			Category:         product.Category,
			ABCClass:         product.ABCClass,
			OrderDate:        orderDate,
			PlannedDelivery:  planned,
			DeliveryDate:     delivery,
			Quantity:         quantity,
			UnitCost:         product.UnitCost,
			TotalValue:       total,
			LeadTime:         leadTime,
			MRPCompliance:    s.complianceFlag(s.cfg.MRPCompliantRate),
			SetupCompliance:  s.complianceFlag(s.cfg.SetupCompliantRate),
			DefectRate:       decimal.NewFromFloat(defectRate).Round(2),
			QualityCost:      decimal.NewFromFloat(qualityCost).Round(2),
			LatePenalty:      decimal.NewFromFloat(latePenalty).Round(2),
			CreatedTimestamp: now,
		})
	}
	return orders
}

func (s *Service) buildInventory(count int, products []models.Product, now time.Time) []models.InventoryItem {
	items := make([]models.InventoryItem, 0, count)
	for i := 0; i < count; i++ {
		product := products[i]
		stock, safety := s.stockLevelsFor(product.ABCClass)
		unitCost, _ := product.UnitCost.Float64()

		eoq := int(math.Sqrt(2*s.cfg.AnnualDemandAssumption*unitCost) * s.floatBetween(0.8, 1.2))
		rop := safety + s.intBetween(10, 49)

		value := float64(stock) * unitCost
		items = append(items, models.InventoryItem{
			ProductID:        product.ProductID,
			CurrentStock:     stock,
			SafetyStock:      safety,
			EOQ:              eoq,
			ReorderPoint:     rop,
			InventoryValue:   decimal.NewFromFloat(value).Round(2),
			CarryingCost:     decimal.NewFromFloat(value * s.cfg.CarryingCostRate).Round(2),
			StockStatus:      enums.StockStatusFor(stock, safety, rop),
			UpdatedTimestamp: now,
		})
	}
	return items
}

func (s *Service) pickABCClass() enums.ABCClass {
	// Value distribution: 20% A, 30% B, 50% C.
	switch roll := s.rng.Float64(); {
	case roll < 0.2:
		return enums.ABCClassA
	case roll < 0.5:
		return enums.ABCClassB
	default:
		return enums.ABCClassC
	}
}

func (s *Service) unitCostFor(class enums.ABCClass) float64 {
	switch class {
	case enums.ABCClassA:
		return s.floatBetween(s.cfg.UnitCostAMin, s.cfg.UnitCostAMax)
	case enums.ABCClassB:
		return s.floatBetween(s.cfg.UnitCostBMin, s.cfg.UnitCostBMax)
	default:
		return s.floatBetween(s.cfg.UnitCostCMin, s.cfg.UnitCostCMax)
	}
}

func (s *Service) quantityFor(class enums.ABCClass) int {
	switch class {
	case enums.ABCClassA:
		return s.intBetween(50, 199)
	case enums.ABCClassB:
		return s.intBetween(100, 499)
	default:
		return s.intBetween(200, 999)
	}
}

func (s *Service) stockLevelsFor(class enums.ABCClass) (stock, safety int) {
	switch class {
	case enums.ABCClassA:
		return s.intBetween(50, 499), s.intBetween(20, 99)
	case enums.ABCClassB:
		return s.intBetween(100, 799), s.intBetween(50, 199)
	default:
		return s.intBetween(200, 1499), s.intBetween(100, 399)
	}
}

func (s *Service) complianceFlag(compliantRate float64) enums.ComplianceStatus {
	if s.rng.Float64() < compliantRate {
		return enums.ComplianceCompliant
	}
	return enums.ComplianceNonCompliant
}

// defectRateFor draws from an exponential distribution whose mean shrinks as
// supplier quality approaches 5, clamped to a percentage.
func (s *Service) defectRateFor(quality float64) float64 {
	mean := math.Max(0, 5-quality)
	if mean == 0 {
		return 0
	}
	return math.Min(100, s.rng.ExpFloat64()*mean)
}

func (s *Service) intBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.rng.Intn(max-min+1)
}

func (s *Service) floatBetween(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + s.rng.Float64()*(max-min)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
