package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmops/inputplan/pkg/domain/entities"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestStore_Products(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.LoadProducts(ctx, []entities.Product{
		{ID: "UREA", Name: "Urea 46-0-0", Unit: "ton", Category: entities.Fertilizer},
		{ID: "GLY", Name: "Glyphosate", Unit: "gal", Category: entities.Chemical},
	}))
	require.NoError(t, store.LoadProducts(ctx, []entities.Product{{ID: "GLY", Name: "Roundup PowerMax", Unit: "gal", Category: entities.Chemical}}))

	product, err := store.GetProduct(ctx, "GLY")
	require.NoError(t, err)
	assert.Equal(t, "Roundup PowerMax", product.Name)
	assert.Equal(t, entities.Chemical, product.Category)

	all, err := store.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, entities.ProductID("GLY"), all[0].ID)

	_, err = store.GetProduct(ctx, "NOPE")
	assert.True(t, errors.Is(err, entities.ErrProductNotFound))
}

func TestStore_PlanUsageRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.LoadPlanUsage(ctx, []entities.PlanUsageItem{
		{ProductID: "AMS", TotalNeeded: d("12.5"), Unit: "ton", Usages: []entities.Usage{{CropName: "Corn", TimingName: "Pre-plant"}}},
		{ProductID: "AMS", TotalNeeded: d("2.5"), Unit: "ton"},
	}))

	usage, err := store.GetPlanUsage(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.True(t, usage[0].TotalNeeded.Equal(d("12.5")))
	assert.Equal(t, []entities.Usage{{CropName: "Corn", TimingName: "Pre-plant"}}, usage[0].Usages)
	assert.Empty(t, usage[1].Usages)
}

func TestStore_InventoryKeepsEveryRow(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	totes := 2

	require.NoError(t, store.LoadInventoryRows(ctx, []entities.InventoryRow{
		{ProductID: "GLY", Quantity: d("100"), ContainerCount: &totes, Location: "Shed", LotNumber: "L1"},
		{ProductID: "GLY", Quantity: d("50.25")},
		{ProductID: "AMS", Quantity: d("3")},
	}))

	rows, err := store.GetInventoryRowsForProduct(ctx, "GLY")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, entities.SumInventory(rows).Equal(d("150.25")))
	require.NotNil(t, rows[0].ContainerCount)
	assert.Equal(t, 2, *rows[0].ContainerCount)
	assert.Nil(t, rows[1].ContainerCount)

	all, err := store.GetInventoryRows(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_OrdersUpsertReplacesLines(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.LoadOrders(ctx, []entities.Order{{
		ID: "PO-1", VendorName: "Valley Coop", Status: entities.OrderDraft,
		Lines: []entities.OrderItem{
			{ProductID: "UREA", OrderedQty: d("12"), Unit: "ton", UnitPrice: d("510")},
			{ProductID: "AMS", OrderedQty: d("15"), Unit: "ton", UnitPrice: d("415")},
		},
	}}))
	require.NoError(t, store.LoadOrders(ctx, []entities.Order{{
		ID: "PO-1", VendorName: "Valley Coop", Status: entities.OrderOrdered,
		Lines: []entities.OrderItem{
			{ProductID: "UREA", OrderedQty: d("12"), ReceivedQty: d("4"), Unit: "ton", UnitPrice: d("510")},
		},
	}}))

	order, err := store.GetOrder(ctx, "PO-1")
	require.NoError(t, err)
	assert.Equal(t, entities.OrderOrdered, order.Status)
	require.Len(t, order.Lines, 1)
	assert.True(t, order.Lines[0].RemainingQty().Equal(d("8")))

	orders, err := store.GetOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Lines, 1)

	_, err = store.GetOrder(ctx, "PO-404")
	assert.Error(t, err)
}

func TestStore_PriceHistory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordPrices(ctx, []entities.PriceHistoryEntry{
		{ProductID: "AMS", VendorName: "Coop", InvoiceID: "INV-2", Unit: "ton", UnitPrice: d("420"), LandedUnitCost: d("440.10"), RecordedAt: first.Add(24 * time.Hour)},
		{ProductID: "AMS", VendorName: "Coop", InvoiceID: "INV-1", Unit: "ton", UnitPrice: d("415"), LandedUnitCost: d("433.518518"), RecordedAt: first},
	}))

	history, err := store.GetPriceHistory(ctx, "AMS")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "INV-1", history[0].InvoiceID)
	assert.True(t, history[0].LandedUnitCost.Equal(d("433.518518")))
	assert.True(t, history[0].RecordedAt.Equal(first))
}

func TestStore_SeedAndReset(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SeedScenario(ctx, Scenario{
		Products:  []entities.Product{{ID: "AMS", Name: "AMS", Unit: "ton"}},
		PlanUsage: []entities.PlanUsageItem{{ProductID: "AMS", TotalNeeded: d("10"), Unit: "ton"}},
		Inventory: []entities.InventoryRow{{ProductID: "AMS", Quantity: d("4")}},
		Orders:    []entities.Order{{ID: "PO-1", Status: entities.OrderOrdered, Lines: []entities.OrderItem{{ProductID: "AMS", OrderedQty: d("6")}}}},
	}))
	require.NoError(t, store.Ping(ctx))

	usage, err := store.GetPlanUsage(ctx)
	require.NoError(t, err)
	assert.Len(t, usage, 1)

	require.NoError(t, store.Reset(ctx))
	orders, err := store.GetOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	products, err := store.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestStore_ReplaceScenarioIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	original := Scenario{
		Products:  []entities.Product{{ID: "AMS", Name: "AMS", Unit: "ton"}},
		PlanUsage: []entities.PlanUsageItem{{ProductID: "AMS", TotalNeeded: d("10"), Unit: "ton"}},
		Inventory: []entities.InventoryRow{{ProductID: "AMS", Quantity: d("4")}},
		Orders:    []entities.Order{{ID: "PO-1", Status: entities.OrderOrdered, Lines: []entities.OrderItem{{ProductID: "AMS", OrderedQty: d("6")}}}},
	}
	require.NoError(t, store.ReplaceScenario(ctx, original))

	// Products, plan and inventory insert fine; the order fails last.
	broken := Scenario{
		Products:  []entities.Product{{ID: "UREA", Name: "Urea", Unit: "ton"}},
		PlanUsage: []entities.PlanUsageItem{{ProductID: "UREA", TotalNeeded: d("20"), Unit: "ton"}},
		Inventory: []entities.InventoryRow{{ProductID: "UREA", Quantity: d("5")}},
		Orders:    []entities.Order{{ID: "PO-9", Status: "shipped", Lines: []entities.OrderItem{{ProductID: "UREA", OrderedQty: d("1")}}}},
	}
	err := store.ReplaceScenario(ctx, broken)
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrInvalidInput)

	products, err := store.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, entities.ProductID("AMS"), products[0].ID)

	usage, err := store.GetPlanUsage(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.True(t, d("10").Equal(usage[0].TotalNeeded))

	inventory, err := store.GetInventoryRows(ctx)
	require.NoError(t, err)
	require.Len(t, inventory, 1)
	assert.Equal(t, entities.ProductID("AMS"), inventory[0].ProductID)

	orders, err := store.GetOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "PO-1", orders[0].ID)

	// A valid replacement swaps everything.
	broken.Orders[0].Status = entities.OrderOrdered
	require.NoError(t, store.ReplaceScenario(ctx, broken))
	products, err = store.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, entities.ProductID("UREA"), products[0].ID)
}

func TestStore_SeedScenarioRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.SeedScenario(ctx, Scenario{
		Products: []entities.Product{{ID: "AMS", Name: "AMS", Unit: "ton"}},
		Orders:   []entities.Order{{ID: "PO-1", Status: "bogus"}},
	})
	require.Error(t, err)

	products, err := store.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}
