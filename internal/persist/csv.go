package persist

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jamalkashmiri/supplypulse-backend/pkg/db/models"
	"github.com/jamalkashmiri/supplypulse-backend/pkg/enums"
	pkgerrors "github.com/jamalkashmiri/supplypulse-backend/pkg/errors"
)

// CSV file names under the data directory.
const (
	OrdersFile    = "orders.csv"
	InventoryFile = "inventory.csv"
	ProductsFile  = "products.csv"
	SuppliersFile = "suppliers.csv"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339
)

var (
	orderHeader = []string{
		"order_id", "supplier_id", "product_id", "category", "abc_class",
		"order_date", "planned_delivery", "delivery_date", "quantity",
		"unit_cost", "total_value", "lead_time", "mrp_compliance",
		"setup_compliance", "defect_rate", "quality_cost", "late_penalty",
		"created_timestamp",
	}
	inventoryHeader = []string{
		"product_id", "current_stock", "safety_stock", "eoq", "rop",
		"inventory_value", "carrying_cost", "stock_status", "updated_timestamp",
	}
	productHeader = []string{
		"product_id", "product_name", "category", "abc_class", "unit_cost",
		"updated_timestamp",
	}
	supplierHeader = []string{
		"supplier_id", "supplier_name", "lead_time_target", "quality_rating",
		"updated_timestamp",
	}
)

// CSVStore appends rows to per-entity CSV files. Files are created with a
// header on first write; later writes append rows only.
type CSVStore struct {
	dir string
}

// NewCSVStore ensures the data directory exists.
func NewCSVStore(dir string) (*CSVStore, error) {
	if dir == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidArgument, "csv directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating csv directory")
	}
	return &CSVStore{dir: dir}, nil
}

// Dir returns the data directory path.
func (s *CSVStore) Dir() string { return s.dir }

// AppendOrders appends order rows to orders.csv.
func (s *CSVStore) AppendOrders(orders []models.Order) error {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, orderRecord(o))
	}
	return s.appendRows(OrdersFile, orderHeader, rows)
}

// AppendInventory appends inventory rows to inventory.csv.
func (s *CSVStore) AppendInventory(items []models.InventoryItem) error {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, inventoryRecord(item))
	}
	return s.appendRows(InventoryFile, inventoryHeader, rows)
}

// AppendProducts appends product rows to products.csv.
func (s *CSVStore) AppendProducts(products []models.Product) error {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, productRecord(p))
	}
	return s.appendRows(ProductsFile, productHeader, rows)
}

// AppendSuppliers appends supplier rows to suppliers.csv.
func (s *CSVStore) AppendSuppliers(suppliers []models.Supplier) error {
	rows := make([][]string, 0, len(suppliers))
	for _, sp := range suppliers {
		rows = append(rows, supplierRecord(sp))
	}
	return s.appendRows(SuppliersFile, supplierHeader, rows)
}

func (s *CSVStore) appendRows(name string, header []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	path := filepath.Join(s.dir, name)

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, fmt.Sprintf("opening %s", name))
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, fmt.Sprintf("writing %s header", name))
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, fmt.Sprintf("appending rows to %s", name))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, fmt.Sprintf("flushing %s", name))
	}
	return f.Sync()
}

// ReadOrders loads all order rows from orders.csv. A missing file yields an
// empty slice.
func (s *CSVStore) ReadOrders() ([]models.Order, error) {
	records, err := s.readRows(OrdersFile, len(orderHeader))
	if err != nil {
		return nil, err
	}
	orders := make([]models.Order, 0, len(records))
	for _, rec := range records {
		o, err := parseOrderRecord(rec)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// ReadInventory loads all inventory rows from inventory.csv.
func (s *CSVStore) ReadInventory() ([]models.InventoryItem, error) {
	records, err := s.readRows(InventoryFile, len(inventoryHeader))
	if err != nil {
		return nil, err
	}
	items := make([]models.InventoryItem, 0, len(records))
	for _, rec := range records {
		item, err := parseInventoryRecord(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ReadProducts loads all product rows from products.csv.
func (s *CSVStore) ReadProducts() ([]models.Product, error) {
	records, err := s.readRows(ProductsFile, len(productHeader))
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(records))
	for _, rec := range records {
		p, err := parseProductRecord(rec)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// ReadSuppliers loads all supplier rows from suppliers.csv.
func (s *CSVStore) ReadSuppliers() ([]models.Supplier, error) {
	records, err := s.readRows(SuppliersFile, len(supplierHeader))
	if err != nil {
		return nil, err
	}
	suppliers := make([]models.Supplier, 0, len(records))
	for _, rec := range records {
		sp, err := parseSupplierRecord(rec)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, sp)
	}
	return suppliers, nil
}

func (s *CSVStore) readRows(name string, fields int) ([][]string, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, fmt.Sprintf("opening %s", name))
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields
	records, err := r.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, fmt.Sprintf("reading %s", name))
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records[1:], nil
}

// RewriteOrders replaces orders.csv wholesale via a temp file rename.
func (s *CSVStore) RewriteOrders(orders []models.Order) error {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, orderRecord(o))
	}
	return s.rewriteRows(OrdersFile, orderHeader, rows)
}

// RewriteInventory replaces inventory.csv wholesale.
func (s *CSVStore) RewriteInventory(items []models.InventoryItem) error {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, inventoryRecord(item))
	}
	return s.rewriteRows(InventoryFile, inventoryHeader, rows)
}

// RewriteProducts replaces products.csv wholesale.
func (s *CSVStore) RewriteProducts(products []models.Product) error {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, productRecord(p))
	}
	return s.rewriteRows(ProductsFile, productHeader, rows)
}

// RewriteSuppliers replaces suppliers.csv wholesale.
func (s *CSVStore) RewriteSuppliers(suppliers []models.Supplier) error {
	rows := make([][]string, 0, len(suppliers))
	for _, sp := range suppliers {
		rows = append(rows, supplierRecord(sp))
	}
	return s.rewriteRows(SuppliersFile, supplierHeader, rows)
}

func (s *CSVStore) rewriteRows(name string, header []string, rows [][]string) error {
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, fmt.Sprintf("opening %s", tmp))
	}

	w := csv.NewWriter(f)
	writeErr := w.Write(header)
	if writeErr == nil {
		writeErr = w.WriteAll(rows)
	}
	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}
	if writeErr == nil {
		writeErr = f.Sync()
	}
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmp)
		return pkgerrors.Wrap(pkgerrors.CodePersistence, writeErr, fmt.Sprintf("rewriting %s", name))
	}
	if err := os.Rename(tmp, path); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, fmt.Sprintf("replacing %s", name))
	}
	return nil
}

func orderRecord(o models.Order) []string {
	return []string{
		o.OrderID,
		o.SupplierID,
		o.ProductID,
		o.Category.String(),
		o.ABCClass.String(),
		o.OrderDate.Format(dateLayout),
		o.PlannedDelivery.Format(dateLayout),
		o.DeliveryDate.Format(dateLayout),
		strconv.Itoa(o.Quantity),
		o.UnitCost.String(),
		o.TotalValue.String(),
		strconv.Itoa(o.LeadTime),
		o.MRPCompliance.String(),
		o.SetupCompliance.String(),
		o.DefectRate.String(),
		o.QualityCost.String(),
		o.LatePenalty.String(),
		o.CreatedTimestamp.Format(timestampLayout),
	}
}

func inventoryRecord(item models.InventoryItem) []string {
	return []string{
		item.ProductID,
		strconv.Itoa(item.CurrentStock),
		strconv.Itoa(item.SafetyStock),
		strconv.Itoa(item.EOQ),
		strconv.Itoa(item.ReorderPoint),
		item.InventoryValue.String(),
		item.CarryingCost.String(),
		item.StockStatus.String(),
		item.UpdatedTimestamp.Format(timestampLayout),
	}
}

func productRecord(p models.Product) []string {
	return []string{
		p.ProductID,
		p.ProductName,
		p.Category.String(),
		p.ABCClass.String(),
		p.UnitCost.String(),
		p.UpdatedTimestamp.Format(timestampLayout),
	}
}

func supplierRecord(s models.Supplier) []string {
	return []string{
		s.SupplierID,
		s.SupplierName,
		strconv.Itoa(s.LeadTimeTarget),
		s.QualityRating.String(),
		s.UpdatedTimestamp.Format(timestampLayout),
	}
}

func parseOrderRecord(rec []string) (models.Order, error) {
	orderDate, err := time.Parse(dateLayout, rec[5])
	if err != nil {
		return models.Order{}, badCSVField("order_date", rec[5], err)
	}
	planned, err := time.Parse(dateLayout, rec[6])
	if err != nil {
		return models.Order{}, badCSVField("planned_delivery", rec[6], err)
	}
	delivery, err := time.Parse(dateLayout, rec[7])
	if err != nil {
		return models.Order{}, badCSVField("delivery_date", rec[7], err)
	}
	quantity, err := strconv.Atoi(rec[8])
	if err != nil {
		return models.Order{}, badCSVField("quantity", rec[8], err)
	}
	leadTime, err := strconv.Atoi(rec[11])
	if err != nil {
		return models.Order{}, badCSVField("lead_time", rec[11], err)
	}
	created, err := time.Parse(timestampLayout, rec[17])
	if err != nil {
		return models.Order{}, badCSVField("created_timestamp", rec[17], err)
	}

	decimals := make([]decimal.Decimal, 5)
	for i, field := range []struct {
		name  string
		value string
	}{
		{"unit_cost", rec[9]},
		{"total_value", rec[10]},
		{"defect_rate", rec[14]},
		{"quality_cost", rec[15]},
		{"late_penalty", rec[16]},
	} {
		d, err := decimal.NewFromString(field.value)
		if err != nil {
			return models.Order{}, badCSVField(field.name, field.value, err)
		}
		decimals[i] = d
	}

	return models.Order{
		OrderID:          rec[0],
		SupplierID:       rec[1],
		ProductID:        rec[2],
		Category:         enums.ProductCategory(rec[3]),
		ABCClass:         enums.ABCClass(rec[4]),
		OrderDate:        orderDate,
		PlannedDelivery:  planned,
		DeliveryDate:     delivery,
		Quantity:         quantity,
		UnitCost:         decimals[0],
		TotalValue:       decimals[1],
		LeadTime:         leadTime,
		MRPCompliance:    enums.ComplianceStatus(rec[12]),
		SetupCompliance:  enums.ComplianceStatus(rec[13]),
		DefectRate:       decimals[2],
		QualityCost:      decimals[3],
		LatePenalty:      decimals[4],
		CreatedTimestamp: created,
	}, nil
}

func parseInventoryRecord(rec []string) (models.InventoryItem, error) {
	ints := make([]int, 4)
	for i, field := range []struct {
		name  string
		value string
	}{
		{"current_stock", rec[1]},
		{"safety_stock", rec[2]},
		{"eoq", rec[3]},
		{"rop", rec[4]},
	} {
		n, err := strconv.Atoi(field.value)
		if err != nil {
			return models.InventoryItem{}, badCSVField(field.name, field.value, err)
		}
		ints[i] = n
	}
	value, err := decimal.NewFromString(rec[5])
	if err != nil {
		return models.InventoryItem{}, badCSVField("inventory_value", rec[5], err)
	}
	carrying, err := decimal.NewFromString(rec[6])
	if err != nil {
		return models.InventoryItem{}, badCSVField("carrying_cost", rec[6], err)
	}
	updated, err := time.Parse(timestampLayout, rec[8])
	if err != nil {
		return models.InventoryItem{}, badCSVField("updated_timestamp", rec[8], err)
	}

	return models.InventoryItem{
		ProductID:        rec[0],
		CurrentStock:     ints[0],
		SafetyStock:      ints[1],
		EOQ:              ints[2],
		ReorderPoint:     ints[3],
		InventoryValue:   value,
		CarryingCost:     carrying,
		StockStatus:      enums.StockStatus(rec[7]),
		UpdatedTimestamp: updated,
	}, nil
}

func parseProductRecord(rec []string) (models.Product, error) {
	cost, err := decimal.NewFromString(rec[4])
	if err != nil {
		return models.Product{}, badCSVField("unit_cost", rec[4], err)
	}
	updated, err := time.Parse(timestampLayout, rec[5])
	if err != nil {
		return models.Product{}, badCSVField("updated_timestamp", rec[5], err)
	}
	return models.Product{
		ProductID:        rec[0],
		ProductName:      rec[1],
		Category:         enums.ProductCategory(rec[2]),
		ABCClass:         enums.ABCClass(rec[3]),
		UnitCost:         cost,
		UpdatedTimestamp: updated,
	}, nil
}

func parseSupplierRecord(rec []string) (models.Supplier, error) {
	leadTarget, err := strconv.Atoi(rec[2])
	if err != nil {
		return models.Supplier{}, badCSVField("lead_time_target", rec[2], err)
	}
	rating, err := decimal.NewFromString(rec[3])
	if err != nil {
		return models.Supplier{}, badCSVField("quality_rating", rec[3], err)
	}
	updated, err := time.Parse(timestampLayout, rec[4])
	if err != nil {
		return models.Supplier{}, badCSVField("updated_timestamp", rec[4], err)
	}
	return models.Supplier{
		SupplierID:       rec[0],
		SupplierName:     rec[1],
		LeadTimeTarget:   leadTarget,
		QualityRating:    rating,
		UpdatedTimestamp: updated,
	}, nil
}

func badCSVField(field, value string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodePersistence, err, fmt.Sprintf("parsing csv field %s=%q", field, value))
}
