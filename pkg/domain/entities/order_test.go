package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderItem_RemainingQty(t *testing.T) {
	tests := []struct {
		name     string
		ordered  int64
		received int64
		expected int64
	}{
		{"nothing received", 80, 0, 80},
		{"partially received", 80, 30, 50},
		{"fully received", 80, 80, 0},
		{"over received clamps to zero", 80, 90, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := OrderItem{
				ProductID:   "UREA",
				OrderedQty:  decimal.NewFromInt(tt.ordered),
				ReceivedQty: decimal.NewFromInt(tt.received),
			}
			assert.True(t, item.RemainingQty().Equal(decimal.NewFromInt(tt.expected)),
				"expected %d, got %s", tt.expected, item.RemainingQty())
		})
	}
}

func TestOrder_Validation(t *testing.T) {
	_, err := NewOrder("PO-1", "Coop", OrderOrdered, []OrderItem{
		{ProductID: "UREA", OrderedQty: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)

	testCases := []struct {
		name        string
		id          string
		lines       []OrderItem
		expectError string
	}{
		{"empty id", "", nil, "order id cannot be empty"},
		{"empty product", "PO-2", []OrderItem{{OrderedQty: decimal.NewFromInt(1)}}, "order PO-2 line 1: product id cannot be empty"},
		{"negative ordered", "PO-3", []OrderItem{{ProductID: "X", OrderedQty: decimal.NewFromInt(-1)}}, "order PO-3 line 1: ordered quantity cannot be negative, got -1"},
		{"negative received", "PO-4", []OrderItem{{ProductID: "X", ReceivedQty: decimal.NewFromInt(-2)}}, "order PO-4 line 1: received quantity cannot be negative, got -2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOrder(tc.id, "", OrderOrdered, tc.lines)
			require.Error(t, err)
			assert.Equal(t, tc.expectError, err.Error())
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	assert.Equal(t, OrderOrdered, ParseOrderStatus(" Ordered "))
	assert.Equal(t, OrderCancelled, ParseOrderStatus("CANCELLED"))
	assert.Equal(t, OrderStatus("bid"), ParseOrderStatus("bid"))
	assert.True(t, ParseOrderStatus("Partial").Valid())
	assert.False(t, ParseOrderStatus("bid").Valid())
}
