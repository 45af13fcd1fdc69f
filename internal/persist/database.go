package persist

import (
	"context"

	"gorm.io/gorm"

	"github.com/jamalkashmiri/supplypulse-backend/pkg/db"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/db/models"
	pkgerrors "github.com/jamalkashmiri/supplypulse-backend/pkg/errors"
)

const insertBatchSize = 500

// DatabaseWriter is the relational side of the adapter. Master data and the
// inventory snapshot are replaced wholesale; orders accumulate.
type DatabaseWriter interface {
	ReplaceSuppliers(ctx context.Context, suppliers []models.Supplier) error
	ReplaceProducts(ctx context.Context, products []models.Product) error
	ReplaceInventory(ctx context.Context, items []models.InventoryItem) error
	AppendOrders(ctx context.Context, orders []models.Order) error
}

// GormWriter implements DatabaseWriter on top of the shared db client.
type GormWriter struct {
	client *db.Client
}

// NewGormWriter wraps a connected client.
func NewGormWriter(client *db.Client) *GormWriter {
	return &GormWriter{client: client}
}

func (w *GormWriter) ReplaceSuppliers(ctx context.Context, suppliers []models.Supplier) error {
	return replaceTable(ctx, w.client, "suppliers", suppliers)
}

func (w *GormWriter) ReplaceProducts(ctx context.Context, products []models.Product) error {
	return replaceTable(ctx, w.client, "products", products)
}

func (w *GormWriter) ReplaceInventory(ctx context.Context, items []models.InventoryItem) error {
	return replaceTable(ctx, w.client, "inventory", items)
}

func (w *GormWriter) AppendOrders(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	err := w.client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.CreateInBatches(orders, insertBatchSize).Error
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "inserting orders")
	}
	return nil
}

// replaceTable swaps a table's contents inside one transaction so readers
// never observe a half-written snapshot.
func replaceTable[T any](ctx context.Context, client *db.Client, table string, rows []T) error {
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, insertBatchSize).Error
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "replacing "+table)
	}
	return nil
}
