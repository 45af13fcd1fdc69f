package kpi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jamalkashmiri/supplypulse-backend/pkg/config"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/db/models"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/enums"
	pkgerrors "github.com/jamalkashmiri/supplypulse-backend/pkg/errors"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/logger"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/redis"
)

const summarySnapshotName = "kpi_summary"

// Summary is the dashboard read model computed over the recent order window
// and the current inventory snapshot.
type Summary struct {
	OrderCount               int     `json:"order_count"`
	OTDPercent               float64 `json:"otd_percent"`
	AvgLeadTimeDays          float64 `json:"avg_lead_time_days"`
	LeadTimeStdDevDays       float64 `json:"lead_time_std_dev_days"`
	ProcessCompliancePercent float64 `json:"process_compliance_percent"`
	AvgDefectRatePercent     float64 `json:"avg_defect_rate_percent"`
	InventoryTurnover        float64 `json:"inventory_turnover"`
	TotalInventoryValue      float64 `json:"total_inventory_value"`
	TotalCarryingCost        float64 `json:"total_carrying_cost"`
	TotalQualityCost         float64 `json:"total_quality_cost"`
	TotalLatePenalty         float64 `json:"total_late_penalty"`
	CriticalStockItems       int     `json:"critical_stock_items"`
	LowStockItems            int     `json:"low_stock_items"`

	Source     string    `json:"source"`
	ComputedAt time.Time `json:"computed_at"`
}

// Repository reads the order history and inventory snapshot.
type Repository interface {
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	Inventory(ctx context.Context) ([]models.InventoryItem, error)
}

// Cache is the snapshot cache surface; *redis.Client satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SnapshotKey(name string) string
}

// ServiceParams wire a KPI service. Primary may be nil in CSV-only mode;
// Cache may be nil when Redis is not configured.
type ServiceParams struct {
	Primary  Repository
	Fallback Repository
	Cache    Cache
	Config   config.KPIConfig
	Logger   *logger.Logger
}

// Service computes dashboard KPIs, preferring the database and falling back
// to the CSV files when it is unreachable.
type Service struct {
	primary  Repository
	fallback Repository
	cache    Cache
	cfg      config.KPIConfig
	logg     *logger.Logger

	now func() time.Time
}

// NewService builds a KPI service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Fallback == nil {
		return nil, fmt.Errorf("fallback repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		primary:  params.Primary,
		fallback: params.Fallback,
		cache:    params.Cache,
		cfg:      params.Config,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// Summary returns the cached snapshot when fresh, otherwise recomputes it.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	if cached, ok := s.cachedSummary(ctx); ok {
		return cached, nil
	}

	orders, items, source, err := s.load(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := s.compute(orders, items)
	summary.Source = source
	summary.ComputedAt = s.now().UTC()

	s.storeSnapshot(ctx, summary)
	return summary, nil
}

// InventoryAlerts returns inventory rows sitting at or below their reorder
// point, most depleted first.
func (s *Service) InventoryAlerts(ctx context.Context) ([]models.InventoryItem, error) {
	_, items, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	alerts := make([]models.InventoryItem, 0)
	for _, item := range items {
		if item.StockStatus != enums.StockStatusNormal {
			alerts = append(alerts, item)
		}
	}
	// Critical before Low, then by stock level.
	sort.SliceStable(alerts, func(i, j int) bool {
		return alertRank(alerts[i]) < alertRank(alerts[j])
	})
	return alerts, nil
}

func alertRank(item models.InventoryItem) int {
	if item.StockStatus == enums.StockStatusCritical {
		return item.CurrentStock
	}
	return 1_000_000 + item.CurrentStock
}

func (s *Service) load(ctx context.Context) ([]models.Order, []models.InventoryItem, string, error) {
	if s.primary != nil {
		orders, items, err := loadFrom(ctx, s.primary, s.cfg.RecentOrderLimit)
		if err == nil {
			return orders, items, "database", nil
		}
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "database read failed, serving kpis from csv")
	}

	orders, items, err := loadFrom(ctx, s.fallback, s.cfg.RecentOrderLimit)
	if err != nil {
		return nil, nil, "", pkgerrors.Wrap(pkgerrors.CodeConnectivity, err, "loading kpi inputs")
	}
	return orders, items, "csv", nil
}

func loadFrom(ctx context.Context, repo Repository, limit int) ([]models.Order, []models.InventoryItem, error) {
	orders, err := repo.RecentOrders(ctx, limit)
	if err != nil {
		return nil, nil, err
	}
	items, err := repo.Inventory(ctx)
	if err != nil {
		return nil, nil, err
	}
	return orders, items, nil
}

func (s *Service) compute(orders []models.Order, items []models.InventoryItem) Summary {
	summary := Summary{OrderCount: len(orders)}

	summary.OTDPercent = OTDPercent(orders)
	summary.AvgLeadTimeDays, summary.LeadTimeStdDevDays = LeadTimeStats(orders)
	summary.ProcessCompliancePercent = ProcessCompliance(orders)

	cogs := 0.0
	defectSum := 0.0
	for _, o := range orders {
		value, _ := o.TotalValue.Float64()
		cogs += value
		defect, _ := o.DefectRate.Float64()
		defectSum += defect
		qc, _ := o.QualityCost.Float64()
		summary.TotalQualityCost += qc
		lp, _ := o.LatePenalty.Float64()
		summary.TotalLatePenalty += lp
	}
	if len(orders) > 0 {
		summary.AvgDefectRatePercent = defectSum / float64(len(orders))
	}

	for _, item := range items {
		value, _ := item.InventoryValue.Float64()
		summary.TotalInventoryValue += value
		carrying, _ := item.CarryingCost.Float64()
		summary.TotalCarryingCost += carrying
		switch item.StockStatus {
		case enums.StockStatusCritical:
			summary.CriticalStockItems++
		case enums.StockStatusLow:
			summary.LowStockItems++
		}
	}

	if len(items) > 0 {
		summary.InventoryTurnover = InventoryTurnover(cogs, summary.TotalInventoryValue/float64(len(items)))
	}
	return summary
}

func (s *Service) cachedSummary(ctx context.Context) (Summary, bool) {
	if s.cache == nil {
		return Summary{}, false
	}
	raw, err := s.cache.Get(ctx, s.cache.SnapshotKey(summarySnapshotName))
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "kpi snapshot read failed")
		}
		return Summary{}, false
	}
	var summary Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return Summary{}, false
	}
	return summary, true
}

func (s *Service) storeSnapshot(ctx context.Context, summary Summary) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.SnapshotKey(summarySnapshotName), payload, s.cfg.CacheTTL); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "kpi snapshot write failed")
	}
}
