package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmops/inputplan/pkg/domain/entities"
)

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func demandLine(id string, required int64) entities.DemandLine {
	return entities.DemandLine{ProductID: entities.ProductID(id), Label: id, RequiredQty: qty(required), Unit: "gal"}
}

func invRows(id string, quantities ...int64) []entities.InventoryRow {
	var rows []entities.InventoryRow
	for _, q := range quantities {
		rows = append(rows, entities.InventoryRow{ProductID: entities.ProductID(id), Quantity: qty(q)})
	}
	return rows
}

func orderLine(orderID, id string, remaining int64) entities.OrderLine {
	return entities.OrderLine{
		OrderID:      orderID,
		VendorName:   "Valley Coop",
		Status:       entities.OrderOrdered,
		ProductID:    entities.ProductID(id),
		RemainingQty: qty(remaining),
		Unit:         "gal",
	}
}

func TestComputeReadiness_Scenarios(t *testing.T) {
	tests := []struct {
		name            string
		required        int64
		inventory       []int64
		orders          []int64
		expectedStatus  entities.ReadinessStatus
		expectedOnHand  int64
		expectedOnOrder int64
		expectedShort   int64
	}{
		{"fully_ready", 100, []int64{70, 30}, nil, entities.Ready, 100, 0, 0},
		{"covered_by_order", 100, []int64{40}, []int64{80}, entities.OnOrder, 40, 80, 0},
		{"blocking", 100, []int64{20}, []int64{30}, entities.Blocking, 20, 30, 50},
		{"no_supply_at_all", 100, nil, nil, entities.Blocking, 0, 0, 100},
		{"zero_required_is_ready", 0, nil, nil, entities.Ready, 0, 0, 0},
		{"on_hand_wins_over_orders", 100, []int64{120}, []int64{500}, entities.Ready, 120, 500, 0},
		{"exact_cover_with_orders", 100, []int64{60}, []int64{25, 15}, entities.OnOrder, 60, 40, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lines []entities.OrderLine
			for i, r := range tt.orders {
				lines = append(lines, orderLine(string(rune('A'+i)), "GLY", r))
			}

			result := ComputeReadiness(
				[]entities.DemandLine{demandLine("GLY", tt.required)},
				invRows("GLY", tt.inventory...),
				lines,
			)

			require.Len(t, result.Items, 1)
			item := result.Items[0]
			assert.Equal(t, tt.expectedStatus, item.Status)
			assert.True(t, item.OnHandQty.Equal(qty(tt.expectedOnHand)), "on hand: got %s", item.OnHandQty)
			assert.True(t, item.OnOrderQty.Equal(qty(tt.expectedOnOrder)), "on order: got %s", item.OnOrderQty)
			assert.True(t, item.ShortQty.Equal(qty(tt.expectedShort)), "short: got %s", item.ShortQty)
			assert.True(t, item.Explain.Reconciles())
		})
	}
}

func TestComputeReadiness_SumsAllInventoryRows(t *testing.T) {
	// Regression: two rows of 100 and 50 must report 150, not the first match.
	inventory := append(invRows("ATRAZINE", 100), invRows("OTHER", 999)...)
	inventory = append(inventory, invRows("ATRAZINE", 50)...)

	result := ComputeReadiness([]entities.DemandLine{demandLine("ATRAZINE", 140)}, inventory, nil)

	item := result.Items[0]
	assert.True(t, item.OnHandQty.Equal(qty(150)), "got %s", item.OnHandQty)
	assert.Equal(t, entities.Ready, item.Status)
	require.Len(t, item.Explain.InventoryRows, 2)
	assert.True(t, item.Explain.InventoryRows[0].Quantity.Equal(qty(100)))
	assert.True(t, item.Explain.InventoryRows[1].Quantity.Equal(qty(50)))
}

func TestComputeReadiness_ExplainCarriesOrderAnnotations(t *testing.T) {
	orders := []entities.OrderLine{orderLine("PO-1", "UREA", 30), orderLine("PO-2", "UREA", 20), orderLine("PO-3", "AMS", 10)}

	result := ComputeReadiness([]entities.DemandLine{demandLine("UREA", 100)}, nil, orders)

	explain := result.Items[0].Explain
	require.Len(t, explain.OrderLines, 2)
	assert.Equal(t, "PO-1", explain.OrderLines[0].OrderID)
	assert.Equal(t, "Valley Coop", explain.OrderLines[0].VendorName)
	assert.Equal(t, entities.OrderOrdered, explain.OrderLines[0].Status)
	assert.Equal(t, entities.Unit("gal"), explain.OrderLines[0].Unit)
	assert.True(t, explain.OnOrderQty.Equal(qty(50)))
	assert.True(t, explain.ShortQty.Equal(qty(50)))
	assert.Equal(t, entities.Unit("gal"), explain.PlannedUnit)
}

func TestComputeReadiness_StatusMonotonicInOnHand(t *testing.T) {
	rank := map[entities.ReadinessStatus]int{entities.Blocking: 0, entities.OnOrder: 1, entities.Ready: 2}

	for _, onOrder := range []int64{0, 30, 60, 150} {
		previous := -1
		for onHand := int64(0); onHand <= 200; onHand += 5 {
			status := ClassifyReadiness(qty(100), qty(onHand), qty(onOrder))
			assert.GreaterOrEqual(t, rank[status], previous, "onOrder=%d onHand=%d regressed to %s", onOrder, onHand, status)
			previous = rank[status]

			if onHand >= 100 {
				assert.Equal(t, entities.Ready, status)
			}
		}
	}
}

func TestComputeReadiness_InvariantsOverGrid(t *testing.T) {
	var planned []entities.DemandLine
	var inventory []entities.InventoryRow
	var orders []entities.OrderLine

	for i := int64(0); i < 12; i++ {
		id := "P" + string(rune('A'+i))
		planned = append(planned, demandLine(id, 10*i))
		inventory = append(inventory, invRows(id, i*3, i%4)...)
		if i%2 == 0 {
			orders = append(orders, orderLine("PO", id, i*2), orderLine("PO2", id, 1))
		}
	}

	result := ComputeReadiness(planned, inventory, orders)

	require.Len(t, result.Items, len(planned))
	assert.Equal(t, result.TotalCount(), result.ReadyCount()+result.OnOrderCount()+result.BlockingCount())
	for i, item := range result.Items {
		assert.Equal(t, planned[i].ProductID, item.ProductID, "items follow demand order")
		assert.False(t, item.ShortQty.IsNegative(), "short must never be negative")
		expectedShort := decimal.Max(decimal.Zero, item.RequiredQty.Sub(item.OnHandQty).Sub(item.OnOrderQty))
		assert.True(t, item.ShortQty.Equal(expectedShort))
		assert.True(t, item.Explain.Reconciles(), "explain must reconcile for %s", item.ProductID)
	}
}

func TestComputeReadiness_Deterministic(t *testing.T) {
	planned := []entities.DemandLine{demandLine("A", 100), demandLine("B", 7)}
	inventory := []entities.InventoryRow{
		{ProductID: "A", Quantity: decimal.RequireFromString("0.1")},
		{ProductID: "A", Quantity: decimal.RequireFromString("0.2")},
		{ProductID: "B", Quantity: decimal.RequireFromString("6.9999")},
	}

	first := ComputeReadiness(planned, inventory, nil)
	for i := 0; i < 20; i++ {
		again := ComputeReadiness(planned, inventory, nil)
		assert.Equal(t, first, again)
	}
	assert.True(t, first.Items[0].OnHandQty.Equal(decimal.RequireFromString("0.3")))
}

func TestComputeReadiness_DoesNotAliasInputs(t *testing.T) {
	inventory := invRows("A", 10, 20)
	result := ComputeReadiness([]entities.DemandLine{demandLine("A", 5)}, inventory, nil)

	inventory[0].Quantity = qty(999)
	assert.True(t, result.Items[0].Explain.InventoryRows[0].Quantity.Equal(qty(10)))
}
