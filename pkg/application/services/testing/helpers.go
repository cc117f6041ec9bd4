package testing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/infrastructure/repositories/memory"
)

// Product ids used by the spring plan fixture
const (
	Glyphosate entities.ProductID = "GLY"
	Atrazine   entities.ProductID = "ATR"
	Urea       entities.ProductID = "UREA"
	AMS        entities.ProductID = "AMS"
)

// ReadinessFixture bundles memory repositories loaded with one scenario
type ReadinessFixture struct {
	Products  *memory.ProductRepository
	Plans     *memory.DemandRepository
	Inventory *memory.InventoryRepository
	Orders    *memory.OrderRepository
}

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// mustCreateInventoryRow is a helper for tests - panics on validation error
func mustCreateInventoryRow(productID entities.ProductID, quantity int64, location string) entities.InventoryRow {
	row, err := entities.NewInventoryRow(productID, qty(quantity), nil, location, "")
	if err != nil {
		panic(err)
	}
	return *row
}

// mustCreateOrder is a helper for tests - panics on validation error
func mustCreateOrder(id, vendor string, status entities.OrderStatus, lines ...entities.OrderItem) entities.Order {
	order, err := entities.NewOrder(id, vendor, status, lines)
	if err != nil {
		panic(err)
	}
	return *order
}

func orderItem(productID entities.ProductID, ordered, received int64, unit entities.Unit) entities.OrderItem {
	return entities.OrderItem{
		ProductID:   productID,
		OrderedQty:  qty(ordered),
		ReceivedQty: qty(received),
		Unit:        unit,
		UnitPrice:   decimal.Zero,
	}
}

// SpringPlanProducts is the catalog used by the spring plan fixture
func SpringPlanProducts() []entities.Product {
	return []entities.Product{
		{ID: Glyphosate, Name: "Glyphosate 5.4", Unit: "gal", Category: entities.Chemical},
		{ID: Atrazine, Name: "Atrazine 4L", Unit: "gal", Category: entities.Chemical},
		{ID: Urea, Name: "Urea 46-0-0", Unit: "lbs", Category: entities.Fertilizer},
	}
}

// SpringPlanInput returns the raw spring plan snapshot:
//
//	GLY  needs 60+40 gal, 70+30 on hand              -> READY
//	ATR  needs 100 gal, 40 on hand, 80 ordered       -> ON_ORDER
//	UREA needs 100 lbs, 20 on hand, 30 ordered       -> BLOCKING short 50
//
// UREA also has a partial order with 50 remaining and a draft for 500, and
// ATR has a cancelled order, none of which count under the default statuses.
func SpringPlanInput() (products []entities.Product, plan []entities.PlanUsageItem, inventory []entities.InventoryRow, orders []entities.Order) {
	products = SpringPlanProducts()

	plan = []entities.PlanUsageItem{
		{ProductID: Glyphosate, TotalNeeded: qty(60), Unit: "gal", Usages: []entities.Usage{{CropName: "Corn", TimingName: "Burndown"}}},
		{ProductID: Atrazine, TotalNeeded: qty(100), Unit: "gal", Usages: []entities.Usage{{CropName: "Corn", TimingName: "Pre-emerge"}}},
		{ProductID: Urea, TotalNeeded: qty(100), Unit: "lbs", Usages: []entities.Usage{{CropName: "Wheat", TimingName: "Topdress"}}},
		{ProductID: Glyphosate, TotalNeeded: qty(40), Unit: "gal", Usages: []entities.Usage{{CropName: "Soybeans", TimingName: "Post"}}},
	}

	inventory = []entities.InventoryRow{
		mustCreateInventoryRow(Glyphosate, 70, "Main Shed"),
		mustCreateInventoryRow(Atrazine, 40, "Main Shed"),
		mustCreateInventoryRow(Urea, 20, "Bin 3"),
		mustCreateInventoryRow(Glyphosate, 30, "North Shed"),
	}

	orders = []entities.Order{
		mustCreateOrder("PO-100", "Valley Coop", entities.OrderOrdered,
			orderItem(Atrazine, 80, 0, "gal"),
			orderItem(Urea, 30, 0, "lbs")),
		mustCreateOrder("PO-101", "Prairie Ag", entities.OrderPartial,
			orderItem(Urea, 60, 10, "lbs")),
		mustCreateOrder("PO-102", "Prairie Ag", entities.OrderDraft,
			orderItem(Urea, 500, 0, "lbs")),
		mustCreateOrder("PO-103", "Valley Coop", entities.OrderCancelled,
			orderItem(Atrazine, 200, 0, "gal")),
	}
	return products, plan, inventory, orders
}

// BuildSpringPlanFixture loads SpringPlanInput into memory repositories
func BuildSpringPlanFixture() *ReadinessFixture {
	ctx := context.Background()
	products, plan, inventory, orders := SpringPlanInput()

	f := &ReadinessFixture{
		Products:  memory.NewProductRepository(len(products)),
		Plans:     memory.NewDemandRepository(),
		Inventory: memory.NewInventoryRepository(),
		Orders:    memory.NewOrderRepository(),
	}
	mustLoad(f.Products.LoadProducts(ctx, products))
	mustLoad(f.Plans.LoadPlanUsage(ctx, plan))
	mustLoad(f.Inventory.LoadInventoryRows(ctx, inventory))
	mustLoad(f.Orders.LoadOrders(ctx, orders))
	return f
}

func mustLoad(err error) {
	if err != nil {
		panic(err)
	}
}

// AMSUreaInvoice is a two-line fertilizer invoice with 500 in shared charges.
// AMS takes 277.78 of the freight and lands at 433.52/ton.
func AMSUreaInvoice() entities.Invoice {
	return entities.Invoice{
		ID:          "INV-2026-0042",
		VendorName:  "Valley Coop",
		InvoiceDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Lines: []entities.FreightLineInput{
			{ProductID: AMS, ProductName: "AMS 21-0-0-24", Quantity: qty(15), Unit: "ton", UnitPrice: qty(415)},
			{ProductID: Urea, ProductName: "Urea 46-0-0", Quantity: qty(12), Unit: "ton", UnitPrice: qty(510)},
		},
		FreightCharge: qty(450),
		OtherCharges:  qty(50),
	}
}
