package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/farmops/inputplan/pkg/domain/entities"
)

// File names read by LoadDirectory
const (
	ProductsFile     = "products.csv"
	PlanUsageFile    = "plan_usage.csv"
	InventoryFile    = "inventory.csv"
	OrdersFile       = "orders.csv"
	InvoiceLinesFile = "invoice_lines.csv"
)

var (
	productsHeader     = []string{"product_id", "name", "unit", "category"}
	planUsageHeader    = []string{"product_id", "crop", "pass", "total_needed", "unit"}
	inventoryHeader    = []string{"product_id", "quantity", "container_count", "location", "lot_number"}
	ordersHeader       = []string{"order_id", "vendor", "status", "product_id", "ordered_qty", "received_qty", "unit", "unit_price"}
	invoiceLinesHeader = []string{"product_id", "product_name", "quantity", "unit", "unit_price"}
)

// Loader handles loading farm-input data from CSV files exported by
// spreadsheets or farm-management tools
type Loader struct {
	encoding encoding.Encoding
}

// NewLoader creates a loader for the named file encoding ("utf-8",
// "windows-1252" or "shift-jis"; empty means utf-8)
func NewLoader(encodingName string) (*Loader, error) {
	enc, err := lookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &Loader{encoding: enc}, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "shift-jis", "shift_jis", "sjis":
		return japanese.ShiftJIS, nil
	default:
		return nil, fmt.Errorf("unsupported csv encoding: %s", name)
	}
}

// Dataset is the readiness input loaded from a directory
type Dataset struct {
	Products  []entities.Product
	PlanUsage []entities.PlanUsageItem
	Inventory []entities.InventoryRow
	Orders    []entities.Order
}

// LoadDirectory loads the readiness files from dir. plan_usage.csv is
// required; the other files are optional.
func (l *Loader) LoadDirectory(dir string) (*Dataset, error) {
	var ds Dataset
	var err error

	if ds.PlanUsage, err = l.LoadPlanUsage(filepath.Join(dir, PlanUsageFile)); err != nil {
		return nil, err
	}
	if path, ok := optionalFile(dir, ProductsFile); ok {
		if ds.Products, err = l.LoadProducts(path); err != nil {
			return nil, err
		}
	}
	if path, ok := optionalFile(dir, InventoryFile); ok {
		if ds.Inventory, err = l.LoadInventory(path); err != nil {
			return nil, err
		}
	}
	if path, ok := optionalFile(dir, OrdersFile); ok {
		if ds.Orders, err = l.LoadOrders(path); err != nil {
			return nil, err
		}
	}
	return &ds, nil
}

func optionalFile(dir, name string) (string, bool) {
	path := filepath.Join(dir, name)
	_, err := os.Stat(path)
	return path, err == nil
}

// readRecords opens filename, validates the header and returns the data rows
func (l *Loader) readRecords(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	var r io.Reader = file
	if l.encoding != nil {
		r = transform.NewReader(file, l.encoding.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", kind)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}
	return rows, nil
}

// LoadProducts loads the product catalog
func (l *Loader) LoadProducts(filename string) ([]entities.Product, error) {
	rows, err := l.readRecords(filename, "products", productsHeader)
	if err != nil {
		return nil, err
	}

	products := make([]entities.Product, 0, len(rows))
	for i, record := range rows {
		id := strings.TrimSpace(record[0])
		if id == "" {
			return nil, fmt.Errorf("products CSV row %d: product_id cannot be empty", i+2)
		}
		products = append(products, entities.Product{
			ID:       entities.ProductID(id),
			Name:     strings.TrimSpace(record[1]),
			Unit:     entities.Unit(strings.TrimSpace(record[2])),
			Category: entities.ParseProductCategory(record[3]),
		})
	}
	return products, nil
}

// LoadPlanUsage loads one plan usage item per row. Repeated products are left
// as separate items; merging is the normalizer's job.
func (l *Loader) LoadPlanUsage(filename string) ([]entities.PlanUsageItem, error) {
	rows, err := l.readRecords(filename, "plan usage", planUsageHeader)
	if err != nil {
		return nil, err
	}

	items := make([]entities.PlanUsageItem, 0, len(rows))
	for i, record := range rows {
		id := strings.TrimSpace(record[0])
		if id == "" {
			return nil, fmt.Errorf("plan usage CSV row %d: product_id cannot be empty", i+2)
		}
		needed, err := parseDecimal("total_needed", record[3])
		if err != nil {
			return nil, fmt.Errorf("plan usage CSV row %d: %w", i+2, err)
		}

		item := entities.PlanUsageItem{
			ProductID:   entities.ProductID(id),
			TotalNeeded: needed,
			Unit:        entities.Unit(strings.TrimSpace(record[4])),
		}
		crop, pass := strings.TrimSpace(record[1]), strings.TrimSpace(record[2])
		if crop != "" || pass != "" {
			item.Usages = []entities.Usage{{CropName: crop, TimingName: pass}}
		}
		items = append(items, item)
	}
	return items, nil
}

// LoadInventory loads on-hand inventory rows. container_count may be blank.
func (l *Loader) LoadInventory(filename string) ([]entities.InventoryRow, error) {
	rows, err := l.readRecords(filename, "inventory", inventoryHeader)
	if err != nil {
		return nil, err
	}

	inventory := make([]entities.InventoryRow, 0, len(rows))
	for i, record := range rows {
		qty, err := parseDecimal("quantity", record[1])
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
		}

		var containers *int
		if s := strings.TrimSpace(record[2]); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("inventory CSV row %d: invalid container_count: %s", i+2, s)
			}
			containers = &n
		}

		row, err := entities.NewInventoryRow(
			entities.ProductID(strings.TrimSpace(record[0])),
			qty,
			containers,
			strings.TrimSpace(record[3]),
			strings.TrimSpace(record[4]),
		)
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
		}
		inventory = append(inventory, *row)
	}
	return inventory, nil
}

// LoadOrders loads purchase orders, one line per row. Rows sharing an
// order_id are grouped into one order in first-appearance order; vendor and
// status come from the order's first row.
func (l *Loader) LoadOrders(filename string) ([]entities.Order, error) {
	rows, err := l.readRecords(filename, "orders", ordersHeader)
	if err != nil {
		return nil, err
	}

	type pending struct {
		vendor string
		status entities.OrderStatus
		lines  []entities.OrderItem
	}
	var ids []string
	byID := make(map[string]*pending)

	for i, record := range rows {
		orderID := strings.TrimSpace(record[0])
		if orderID == "" {
			return nil, fmt.Errorf("orders CSV row %d: order_id cannot be empty", i+2)
		}
		status := entities.ParseOrderStatus(record[2])
		if !status.Valid() {
			return nil, fmt.Errorf("orders CSV row %d: invalid status: %s (expected draft, ordered, partial, received or cancelled)", i+2, record[2])
		}
		item, err := parseOrderItem(record)
		if err != nil {
			return nil, fmt.Errorf("orders CSV row %d: %w", i+2, err)
		}

		p, ok := byID[orderID]
		if !ok {
			p = &pending{vendor: strings.TrimSpace(record[1]), status: status}
			byID[orderID] = p
			ids = append(ids, orderID)
		}
		p.lines = append(p.lines, item)
	}

	orders := make([]entities.Order, 0, len(ids))
	for _, id := range ids {
		p := byID[id]
		order, err := entities.NewOrder(id, p.vendor, p.status, p.lines)
		if err != nil {
			return nil, fmt.Errorf("orders CSV: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// LoadInvoiceLines loads the lines of a single invoice for freight allocation
func (l *Loader) LoadInvoiceLines(filename string) ([]entities.FreightLineInput, error) {
	rows, err := l.readRecords(filename, "invoice lines", invoiceLinesHeader)
	if err != nil {
		return nil, err
	}

	lines := make([]entities.FreightLineInput, 0, len(rows))
	for i, record := range rows {
		qty, err := parseDecimal("quantity", record[2])
		if err != nil {
			return nil, fmt.Errorf("invoice lines CSV row %d: %w", i+2, err)
		}
		price, err := parseDecimal("unit_price", record[4])
		if err != nil {
			return nil, fmt.Errorf("invoice lines CSV row %d: %w", i+2, err)
		}
		lines = append(lines, entities.FreightLineInput{
			ProductID:   entities.ProductID(strings.TrimSpace(record[0])),
			ProductName: strings.TrimSpace(record[1]),
			Quantity:    qty,
			Unit:        entities.Unit(strings.TrimSpace(record[3])),
			UnitPrice:   price,
		})
	}
	return lines, nil
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseOrderItem(record []string) (entities.OrderItem, error) {
	ordered, err := parseDecimal("ordered_qty", record[4])
	if err != nil {
		return entities.OrderItem{}, err
	}
	received, err := parseOptionalDecimal("received_qty", record[5])
	if err != nil {
		return entities.OrderItem{}, err
	}
	price, err := parseOptionalDecimal("unit_price", record[7])
	if err != nil {
		return entities.OrderItem{}, err
	}

	return entities.OrderItem{
		ProductID:   entities.ProductID(strings.TrimSpace(record[3])),
		OrderedQty:  ordered,
		ReceivedQty: received,
		Unit:        entities.Unit(strings.TrimSpace(record[6])),
		UnitPrice:   price,
	}, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", field, s)
	}
	return d, nil
}

func parseOptionalDecimal(field, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return parseDecimal(field, s)
}
