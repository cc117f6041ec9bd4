package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryRow_Validation(t *testing.T) {
	containers := 4
	row, err := NewInventoryRow("AMS", decimal.NewFromInt(10), &containers, "SHED", "LOT001")
	require.NoError(t, err)
	assert.True(t, row.Quantity.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 4, *row.ContainerCount)

	negative := -1
	testCases := []struct {
		name        string
		productID   ProductID
		quantity    Quantity
		containers  *int
		expectError string
	}{
		{"empty product id", "", decimal.NewFromInt(10), nil, "product id cannot be empty"},
		{"negative quantity", "AMS", decimal.NewFromInt(-5), nil, "quantity cannot be negative, got -5"},
		{"negative containers", "AMS", decimal.NewFromInt(5), &negative, "container count cannot be negative, got -1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewInventoryRow(tc.productID, tc.quantity, tc.containers, "", "")
			require.Error(t, err)
			assert.Equal(t, tc.expectError, err.Error())
		})
	}
}

func TestSumInventory_AllRows(t *testing.T) {
	rows := []InventoryRow{
		{ProductID: "GLY", Quantity: decimal.NewFromInt(100)},
		{ProductID: "GLY", Quantity: decimal.NewFromInt(50)},
	}
	assert.True(t, SumInventory(rows).Equal(decimal.NewFromInt(150)))
	assert.True(t, SumInventory(nil).IsZero())
}
