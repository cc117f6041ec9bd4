/*
Package sqlite provides a SQLite-backed implementation of the repository interfaces.

TABLES:
  products:       Product catalog
  plan_usages:    Raw plan usage records (several per product)
  inventory_rows: Physical lots on hand (several per product)
  orders:         Purchase and bid commitments, any status
  order_items:    Order lines with ordered and received quantities
  price_history:  Landed costs written by invoice settlement

Quantities and money are stored as TEXT decimal strings so values round-trip
exactly.

USAGE:
  store, err := sqlite.New("./inputplan.db")
  if err != nil {
      return err
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/domain/repositories"
)

// timeLayout is fixed-width so recorded_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements every repository interface using SQLite
type Store struct {
	db *sqlx.DB
}

// Verify interface compliance
var (
	_ repositories.ProductRepository   = (*Store)(nil)
	_ repositories.DemandRepository    = (*Store)(nil)
	_ repositories.InventoryRepository = (*Store)(nil)
	_ repositories.OrderRepository     = (*Store)(nil)
	_ repositories.PriceHistoryStore   = (*Store)(nil)
)

// New opens the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'Other'
	);

	CREATE TABLE IF NOT EXISTS plan_usages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id TEXT NOT NULL,
		total_needed TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		usages_json TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS inventory_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id TEXT NOT NULL,
		quantity TEXT NOT NULL,
		container_count INTEGER,
		location TEXT NOT NULL DEFAULT '',
		lot_number TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_inventory_rows_product ON inventory_rows(product_id);

	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		vendor_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		ordered_qty TEXT NOT NULL,
		received_qty TEXT NOT NULL DEFAULT '0',
		unit TEXT NOT NULL DEFAULT '',
		unit_price TEXT NOT NULL DEFAULT '0'
	);
	CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id, seq);

	CREATE TABLE IF NOT EXISTS price_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id TEXT NOT NULL,
		vendor_name TEXT NOT NULL DEFAULT '',
		invoice_id TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL DEFAULT '',
		unit_price TEXT NOT NULL,
		landed_unit_cost TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_price_history_product ON price_history(product_id, recorded_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// withTx runs fn in a transaction, rolling back on error
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// =============================================================================
// PRODUCTS
// =============================================================================

type productRow struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Unit     string `db:"unit"`
	Category string `db:"category"`
}

func (r productRow) toEntity() entities.Product {
	return entities.Product{
		ID:       entities.ProductID(r.ID),
		Name:     r.Name,
		Unit:     entities.Unit(r.Unit),
		Category: entities.ParseProductCategory(r.Category),
	}
}

// LoadProducts upserts products
func (s *Store) LoadProducts(ctx context.Context, products []entities.Product) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error { return insertProducts(ctx, tx, products) })
}

func insertProducts(ctx context.Context, tx *sqlx.Tx, products []entities.Product) error {
	for _, p := range products {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO products (id, name, unit, category)
			VALUES (:id, :name, :unit, :category)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, unit = excluded.unit, category = excluded.category`,
			productRow{ID: string(p.ID), Name: p.Name, Unit: string(p.Unit), Category: p.Category.String()},
		)
		if err != nil {
			return fmt.Errorf("failed to save product %s: %w", p.ID, err)
		}
	}
	return nil
}

// GetProduct returns one product
func (s *Store) GetProduct(ctx context.Context, id entities.ProductID) (*entities.Product, error) {
	var row productRow
	err := s.db.GetContext(ctx, &row, `SELECT id, name, unit, category FROM products WHERE id = ?`, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", entities.ErrProductNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	p := row.toEntity()
	return &p, nil
}

// GetAllProducts returns the catalog ordered by id
func (s *Store) GetAllProducts(ctx context.Context) ([]entities.Product, error) {
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name, unit, category FROM products ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products := make([]entities.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, r.toEntity())
	}
	return products, nil
}

// =============================================================================
// PLAN USAGE
// =============================================================================

type planUsageRow struct {
	ProductID   string          `db:"product_id"`
	TotalNeeded decimal.Decimal `db:"total_needed"`
	Unit        string          `db:"unit"`
	UsagesJSON  string          `db:"usages_json"`
}

// LoadPlanUsage appends plan usage records
func (s *Store) LoadPlanUsage(ctx context.Context, items []entities.PlanUsageItem) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error { return insertPlanUsage(ctx, tx, items) })
}

func insertPlanUsage(ctx context.Context, tx *sqlx.Tx, items []entities.PlanUsageItem) error {
	for _, item := range items {
		usages := item.Usages
		if usages == nil {
			usages = []entities.Usage{}
		}
		usagesJSON, err := json.Marshal(usages)
		if err != nil {
			return fmt.Errorf("failed to encode usages for %s: %w", item.ProductID, err)
		}
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO plan_usages (product_id, total_needed, unit, usages_json)
			VALUES (:product_id, :total_needed, :unit, :usages_json)`,
			planUsageRow{
				ProductID:   string(item.ProductID),
				TotalNeeded: item.TotalNeeded,
				Unit:        string(item.Unit),
				UsagesJSON:  string(usagesJSON),
			},
		)
		if err != nil {
			return fmt.Errorf("failed to save plan usage for %s: %w", item.ProductID, err)
		}
	}
	return nil
}

// GetPlanUsage returns plan usage in insertion order
func (s *Store) GetPlanUsage(ctx context.Context) ([]entities.PlanUsageItem, error) {
	var rows []planUsageRow
	err := s.db.SelectContext(ctx, &rows, `SELECT product_id, total_needed, unit, usages_json FROM plan_usages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan usage: %w", err)
	}

	items := make([]entities.PlanUsageItem, 0, len(rows))
	for _, r := range rows {
		var usages []entities.Usage
		if err := json.Unmarshal([]byte(r.UsagesJSON), &usages); err != nil {
			return nil, fmt.Errorf("failed to decode usages for %s: %w", r.ProductID, err)
		}
		items = append(items, entities.PlanUsageItem{
			ProductID:   entities.ProductID(r.ProductID),
			TotalNeeded: r.TotalNeeded,
			Unit:        entities.Unit(r.Unit),
			Usages:      usages,
		})
	}
	return items, nil
}

// =============================================================================
// INVENTORY
// =============================================================================

type inventoryRow struct {
	ProductID      string          `db:"product_id"`
	Quantity       decimal.Decimal `db:"quantity"`
	ContainerCount sql.NullInt64   `db:"container_count"`
	Location       string          `db:"location"`
	LotNumber      string          `db:"lot_number"`
}

func (r inventoryRow) toEntity() entities.InventoryRow {
	row := entities.InventoryRow{
		ProductID: entities.ProductID(r.ProductID),
		Quantity:  r.Quantity,
		Location:  r.Location,
		LotNumber: r.LotNumber,
	}
	if r.ContainerCount.Valid {
		n := int(r.ContainerCount.Int64)
		row.ContainerCount = &n
	}
	return row
}

// LoadInventoryRows appends inventory rows
func (s *Store) LoadInventoryRows(ctx context.Context, rows []entities.InventoryRow) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error { return insertInventoryRows(ctx, tx, rows) })
}

func insertInventoryRows(ctx context.Context, tx *sqlx.Tx, rows []entities.InventoryRow) error {
	for _, row := range rows {
		rec := inventoryRow{
			ProductID: string(row.ProductID),
			Quantity:  row.Quantity,
			Location:  row.Location,
			LotNumber: row.LotNumber,
		}
		if row.ContainerCount != nil {
			rec.ContainerCount = sql.NullInt64{Int64: int64(*row.ContainerCount), Valid: true}
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO inventory_rows (product_id, quantity, container_count, location, lot_number)
			VALUES (:product_id, :quantity, :container_count, :location, :lot_number)`, rec)
		if err != nil {
			return fmt.Errorf("failed to save inventory row for %s: %w", row.ProductID, err)
		}
	}
	return nil
}

// GetInventoryRows returns all inventory rows in insertion order
func (s *Store) GetInventoryRows(ctx context.Context) ([]entities.InventoryRow, error) {
	return s.selectInventory(ctx, `SELECT product_id, quantity, container_count, location, lot_number FROM inventory_rows ORDER BY id`)
}

// GetInventoryRowsForProduct returns every row for one product
func (s *Store) GetInventoryRowsForProduct(ctx context.Context, productID entities.ProductID) ([]entities.InventoryRow, error) {
	return s.selectInventory(ctx, `SELECT product_id, quantity, container_count, location, lot_number FROM inventory_rows WHERE product_id = ? ORDER BY id`, string(productID))
}

func (s *Store) selectInventory(ctx context.Context, query string, args ...any) ([]entities.InventoryRow, error) {
	var rows []inventoryRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	out := make([]entities.InventoryRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out, nil
}

// =============================================================================
// ORDERS
// =============================================================================

type orderRow struct {
	ID         string `db:"id"`
	VendorName string `db:"vendor_name"`
	Status     string `db:"status"`
}

type orderItemRow struct {
	OrderID     string          `db:"order_id"`
	Seq         int             `db:"seq"`
	ProductID   string          `db:"product_id"`
	OrderedQty  decimal.Decimal `db:"ordered_qty"`
	ReceivedQty decimal.Decimal `db:"received_qty"`
	Unit        string          `db:"unit"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
}

// LoadOrders upserts orders, replacing the lines of any existing order
func (s *Store) LoadOrders(ctx context.Context, orders []entities.Order) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error { return insertOrders(ctx, tx, orders) })
}

func insertOrders(ctx context.Context, tx *sqlx.Tx, orders []entities.Order) error {
	for _, order := range orders {
		if !order.Status.Valid() {
			return &entities.ValidationError{Field: "status", Message: fmt.Sprintf("order %s has unknown status %q", order.ID, order.Status)}
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO orders (id, vendor_name, status) VALUES (:id, :vendor_name, :status)
			ON CONFLICT(id) DO UPDATE SET vendor_name = excluded.vendor_name, status = excluded.status`,
			orderRow{ID: order.ID, VendorName: order.VendorName, Status: string(order.Status)},
		)
		if err != nil {
			return fmt.Errorf("failed to save order %s: %w", order.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, order.ID); err != nil {
			return fmt.Errorf("failed to clear lines of order %s: %w", order.ID, err)
		}
		for i, line := range order.Lines {
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO order_items (order_id, seq, product_id, ordered_qty, received_qty, unit, unit_price)
				VALUES (:order_id, :seq, :product_id, :ordered_qty, :received_qty, :unit, :unit_price)`,
				orderItemRow{
					OrderID:     order.ID,
					Seq:         i,
					ProductID:   string(line.ProductID),
					OrderedQty:  line.OrderedQty,
					ReceivedQty: line.ReceivedQty,
					Unit:        string(line.Unit),
					UnitPrice:   line.UnitPrice,
				},
			)
			if err != nil {
				return fmt.Errorf("failed to save line %d of order %s: %w", i+1, order.ID, err)
			}
		}
	}
	return nil
}

// GetOrders returns every order with its lines, ordered by id
func (s *Store) GetOrders(ctx context.Context) ([]entities.Order, error) {
	var headers []orderRow
	if err := s.db.SelectContext(ctx, &headers, `SELECT id, vendor_name, status FROM orders ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	var items []orderItemRow
	err := s.db.SelectContext(ctx, &items, `
		SELECT order_id, seq, product_id, ordered_qty, received_qty, unit, unit_price
		FROM order_items ORDER BY order_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}

	linesByOrder := make(map[string][]entities.OrderItem, len(headers))
	for _, it := range items {
		linesByOrder[it.OrderID] = append(linesByOrder[it.OrderID], it.toEntity())
	}

	orders := make([]entities.Order, 0, len(headers))
	for _, h := range headers {
		orders = append(orders, entities.Order{
			ID:         h.ID,
			VendorName: h.VendorName,
			Status:     entities.OrderStatus(h.Status),
			Lines:      linesByOrder[h.ID],
		})
	}
	return orders, nil
}

// GetOrder returns one order with its lines
func (s *Store) GetOrder(ctx context.Context, id string) (*entities.Order, error) {
	var h orderRow
	err := s.db.GetContext(ctx, &h, `SELECT id, vendor_name, status FROM orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}

	var items []orderItemRow
	err = s.db.SelectContext(ctx, &items, `
		SELECT order_id, seq, product_id, ordered_qty, received_qty, unit, unit_price
		FROM order_items WHERE order_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list lines of order %s: %w", id, err)
	}

	order := &entities.Order{ID: h.ID, VendorName: h.VendorName, Status: entities.OrderStatus(h.Status)}
	for _, it := range items {
		order.Lines = append(order.Lines, it.toEntity())
	}
	return order, nil
}

func (r orderItemRow) toEntity() entities.OrderItem {
	return entities.OrderItem{
		ProductID:   entities.ProductID(r.ProductID),
		OrderedQty:  r.OrderedQty,
		ReceivedQty: r.ReceivedQty,
		Unit:        entities.Unit(r.Unit),
		UnitPrice:   r.UnitPrice,
	}
}

// =============================================================================
// PRICE HISTORY
// =============================================================================

type priceHistoryRow struct {
	ProductID      string          `db:"product_id"`
	VendorName     string          `db:"vendor_name"`
	InvoiceID      string          `db:"invoice_id"`
	Unit           string          `db:"unit"`
	UnitPrice      decimal.Decimal `db:"unit_price"`
	LandedUnitCost decimal.Decimal `db:"landed_unit_cost"`
	RecordedAt     string          `db:"recorded_at"`
}

// RecordPrices appends price history entries atomically
func (s *Store) RecordPrices(ctx context.Context, entries []entities.PriceHistoryEntry) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, e := range entries {
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO price_history (product_id, vendor_name, invoice_id, unit, unit_price, landed_unit_cost, recorded_at)
				VALUES (:product_id, :vendor_name, :invoice_id, :unit, :unit_price, :landed_unit_cost, :recorded_at)`,
				priceHistoryRow{
					ProductID:      string(e.ProductID),
					VendorName:     e.VendorName,
					InvoiceID:      e.InvoiceID,
					Unit:           string(e.Unit),
					UnitPrice:      e.UnitPrice,
					LandedUnitCost: e.LandedUnitCost,
					RecordedAt:     e.RecordedAt.UTC().Format(timeLayout),
				},
			)
			if err != nil {
				return fmt.Errorf("failed to record price for %s: %w", e.ProductID, err)
			}
		}
		return nil
	})
}

// GetPriceHistory returns a product's entries oldest first
func (s *Store) GetPriceHistory(ctx context.Context, productID entities.ProductID) ([]entities.PriceHistoryEntry, error) {
	var rows []priceHistoryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT product_id, vendor_name, invoice_id, unit, unit_price, landed_unit_cost, recorded_at
		FROM price_history WHERE product_id = ? ORDER BY recorded_at, id`, string(productID))
	if err != nil {
		return nil, fmt.Errorf("failed to list price history for %s: %w", productID, err)
	}

	out := make([]entities.PriceHistoryEntry, 0, len(rows))
	for _, r := range rows {
		recordedAt, err := time.Parse(timeLayout, r.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid recorded_at %q: %w", r.RecordedAt, err)
		}
		out = append(out, entities.PriceHistoryEntry{
			ProductID:      entities.ProductID(r.ProductID),
			VendorName:     r.VendorName,
			InvoiceID:      r.InvoiceID,
			Unit:           entities.Unit(r.Unit),
			UnitPrice:      r.UnitPrice,
			LandedUnitCost: r.LandedUnitCost,
			RecordedAt:     recordedAt,
		})
	}
	return out, nil
}

// =============================================================================
// SCENARIO SEEDING
// =============================================================================

// Scenario bundles every collaborator dataset for a bulk load
type Scenario struct {
	Products  []entities.Product
	PlanUsage []entities.PlanUsageItem
	Inventory []entities.InventoryRow
	Orders    []entities.Order
}

// Reset deletes all planning data, keeping price history
func (s *Store) Reset(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error { return clearPlanning(ctx, tx) })
}

func clearPlanning(ctx context.Context, tx *sqlx.Tx) error {
	for _, table := range []string{"order_items", "orders", "inventory_rows", "plan_usages", "products"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// SeedScenario loads a scenario on top of the existing data in one transaction
func (s *Store) SeedScenario(ctx context.Context, sc Scenario) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error { return seed(ctx, tx, sc) })
}

// ReplaceScenario swaps all planning data for sc. On any failure the previous
// data is left untouched.
func (s *Store) ReplaceScenario(ctx context.Context, sc Scenario) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := clearPlanning(ctx, tx); err != nil {
			return err
		}
		return seed(ctx, tx, sc)
	})
}

func seed(ctx context.Context, tx *sqlx.Tx, sc Scenario) error {
	if err := insertProducts(ctx, tx, sc.Products); err != nil {
		return err
	}
	if err := insertPlanUsage(ctx, tx, sc.PlanUsage); err != nil {
		return err
	}
	if err := insertInventoryRows(ctx, tx, sc.Inventory); err != nil {
		return err
	}
	return insertOrders(ctx, tx, sc.Orders)
}
