package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InventoryRow represents one physical lot of a product on hand
type InventoryRow struct {
	ProductID      ProductID `json:"product_id"`
	Quantity       Quantity  `json:"quantity"`
	ContainerCount *int      `json:"container_count,omitempty"`
	Location       string    `json:"location,omitempty"`
	LotNumber      string    `json:"lot_number,omitempty"`
}

// NewInventoryRow creates a validated InventoryRow
func NewInventoryRow(productID ProductID, quantity Quantity, containerCount *int, location, lotNumber string) (*InventoryRow, error) {
	if string(productID) == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity cannot be negative, got %s", quantity)
	}
	if containerCount != nil && *containerCount < 0 {
		return nil, fmt.Errorf("container count cannot be negative, got %d", *containerCount)
	}

	return &InventoryRow{
		ProductID:      productID,
		Quantity:       quantity,
		ContainerCount: containerCount,
		Location:       location,
		LotNumber:      lotNumber,
	}, nil
}

// SumInventory totals the quantity of the given rows
func SumInventory(rows []InventoryRow) Quantity {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Quantity)
	}
	return total
}
