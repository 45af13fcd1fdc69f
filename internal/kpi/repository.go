package kpi

import (
	"context"
	"sort"

	"github.com/jamalkashmiri/supplypulse-backend/internal/persist"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/db"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/db/models"
)

// GormRepository reads KPI inputs from the relational store.
type GormRepository struct {
	client *db.Client
}

// NewGormRepository wraps a connected client.
func NewGormRepository(client *db.Client) *GormRepository {
	return &GormRepository{client: client}
}

func (r *GormRepository) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	q := r.client.DB().WithContext(ctx).Order("order_date DESC, order_id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepository) Inventory(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := r.client.DB().WithContext(ctx).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CSVRepository reads KPI inputs from the fallback CSV files.
type CSVRepository struct {
	store *persist.CSVStore
}

// NewCSVRepository wraps a CSV store.
func NewCSVRepository(store *persist.CSVStore) *CSVRepository {
	return &CSVRepository{store: store}
}

func (r *CSVRepository) RecentOrders(_ context.Context, limit int) ([]models.Order, error) {
	orders, err := r.store.ReadOrders()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(a, b int) bool {
		if !orders[a].OrderDate.Equal(orders[b].OrderDate) {
			return orders[a].OrderDate.After(orders[b].OrderDate)
		}
		return orders[a].OrderID > orders[b].OrderID
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (r *CSVRepository) Inventory(_ context.Context) ([]models.InventoryItem, error) {
	return r.store.ReadInventory()
}
