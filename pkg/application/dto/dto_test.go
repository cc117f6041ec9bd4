package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/domain/services"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewReadinessReport_SummaryAndJSON(t *testing.T) {
	result := entities.ReadinessResult{Items: []entities.ReadinessItem{
		{ProductID: "gly", Label: "Glyphosate", Status: entities.Ready, RequiredQty: dec("100"), OnHandQty: dec("100"), OnOrderQty: decimal.Zero, ShortQty: decimal.Zero},
		{ProductID: "urea", Label: "Urea", Status: entities.Blocking, RequiredQty: dec("100"), OnHandQty: dec("20"), OnOrderQty: dec("30"), ShortQty: dec("50")},
	}}

	report := NewReadinessReport(result, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), true)

	assert.Equal(t, ReadinessSummary{Total: 2, Ready: 1, Blocking: 1}, report.Summary)
	require.NotNil(t, report.Items[0].Explain)
	assert.NotNil(t, report.Items[0].Explain.InventoryRows)

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	items := decoded["items"].([]any)
	second := items[1].(map[string]any)
	assert.Equal(t, "BLOCKING", second["status"])
	assert.Equal(t, "50", second["short_qty"])
}

func TestNewReadinessReport_WithoutExplain(t *testing.T) {
	result := entities.ReadinessResult{Items: []entities.ReadinessItem{{ProductID: "gly", Status: entities.Ready}}}

	report := NewReadinessReport(result, time.Now(), false)

	assert.Nil(t, report.Items[0].Explain)
}

func TestNewFreightAllocationView_AMSAndUrea(t *testing.T) {
	req := FreightAllocationRequest{
		Lines: []FreightLine{
			{ProductID: "AMS", ProductName: "AMS", Quantity: dec("15"), Unit: "ton", UnitPrice: dec("415")},
			{ProductID: "UREA", ProductName: "Urea", Quantity: dec("12"), Unit: "ton", UnitPrice: dec("510")},
		},
		FreightCharge: dec("450"),
		OtherCharges:  dec("50"),
	}

	lines := services.AllocateFreight(req.LineInputs(), req.TotalCharges())
	view := NewFreightAllocationView("INV-7", lines, req.TotalCharges())

	assert.Equal(t, "500.00", view.TotalCharges.StringFixed(2))
	assert.True(t, view.TotalWeight.Equal(dec("54000")))
	require.Len(t, view.Lines, 2)
	assert.Equal(t, "277.78", view.Lines[0].AllocatedFreight.StringFixed(2))
	assert.Equal(t, "222.22", view.Lines[1].AllocatedFreight.StringFixed(2))
	assert.Equal(t, "433.52", view.Lines[0].LandedUnitCost.StringFixed(2))
	assert.Equal(t, "528.52", view.Lines[1].LandedUnitCost.StringFixed(2))
}

func TestInvoiceRequest_ToInvoice(t *testing.T) {
	req := InvoiceRequest{
		ID:            "INV-1",
		VendorName:    "Valley Coop",
		Lines:         []FreightLine{{ProductID: "AMS", Quantity: dec("2"), Unit: "ton", UnitPrice: dec("400")}},
		FreightCharge: dec("80"),
		OtherCharges:  dec("20"),
	}

	inv := req.ToInvoice()

	assert.Equal(t, "INV-1", inv.ID)
	require.Len(t, inv.Lines, 1)
	assert.True(t, inv.TotalCharges().Equal(dec("100")))
	assert.NoError(t, inv.Validate())
}

func TestComputeReadinessRequest_Snapshot(t *testing.T) {
	req := ComputeReadinessRequest{
		Products:  []ProductInput{{ID: "gly", Name: "Glyphosate", Unit: "gal", Category: "chemical"}},
		PlanUsage: []PlanUsageInput{{ProductID: "gly", TotalNeeded: dec("100"), Unit: "gal"}},
		Inventory: []entities.InventoryRow{{ProductID: "gly", Quantity: dec("40")}},
		Orders: []OrderInput{{ID: "PO-1", VendorName: "Coop", Status: "Ordered", Lines: []OrderItemInput{
			{ProductID: "gly", OrderedQty: dec("80"), Unit: "gal"},
		}}},
	}

	products, plan, inventory, orders, err := req.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, entities.Chemical, products[0].Category)
	assert.Len(t, plan, 1)
	assert.Len(t, inventory, 1)
	require.Len(t, orders, 1)
	assert.Equal(t, entities.OrderOrdered, orders[0].Status)
}

func TestComputeReadinessRequest_SnapshotRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		req   ComputeReadinessRequest
		field string
	}{
		{"blank plan product", ComputeReadinessRequest{PlanUsage: []PlanUsageInput{{TotalNeeded: dec("1")}}}, "plan_usage[0].product_id"},
		{"negative inventory", ComputeReadinessRequest{Inventory: []entities.InventoryRow{{ProductID: "x", Quantity: dec("-1")}}}, "inventory[0]"},
		{"unknown status", ComputeReadinessRequest{Orders: []OrderInput{{ID: "PO", Status: "shipped"}}}, "orders[0].status"},
		{"blank order id", ComputeReadinessRequest{Orders: []OrderInput{{Status: "ordered"}}}, "orders[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, _, err := tt.req.Snapshot()
			require.Error(t, err)
			assert.True(t, entities.IsClientError(err))

			var verr *entities.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
