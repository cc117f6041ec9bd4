package entities

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of a purchase order
type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderOrdered   OrderStatus = "ordered"
	OrderPartial   OrderStatus = "partial"
	OrderReceived  OrderStatus = "received"
	OrderCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus normalizes a status label; unknown labels are returned as-is
func ParseOrderStatus(s string) OrderStatus {
	return OrderStatus(strings.ToLower(strings.TrimSpace(s)))
}

// Valid reports whether s is one of the known lifecycle states
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderDraft, OrderOrdered, OrderPartial, OrderReceived, OrderCancelled:
		return true
	}
	return false
}

// DefaultCommittedStatuses is the set of order states that count toward supply
var DefaultCommittedStatuses = []OrderStatus{OrderOrdered}

// OrderItem is one product line on a purchase order
type OrderItem struct {
	ProductID   ProductID
	OrderedQty  Quantity
	ReceivedQty Quantity
	Unit        Unit
	UnitPrice   decimal.Decimal
}

// RemainingQty returns the quantity ordered but not yet received, never negative
func (i OrderItem) RemainingQty() Quantity {
	return ClampNonNegative(i.OrderedQty.Sub(i.ReceivedQty))
}

// Order represents a purchase or bid commitment with a vendor
type Order struct {
	ID         string
	VendorName string
	Status     OrderStatus
	Lines      []OrderItem
}

// NewOrder creates a validated Order
func NewOrder(id, vendorName string, status OrderStatus, lines []OrderItem) (*Order, error) {
	if id == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	for i, line := range lines {
		if string(line.ProductID) == "" {
			return nil, fmt.Errorf("order %s line %d: product id cannot be empty", id, i+1)
		}
		if line.OrderedQty.IsNegative() {
			return nil, fmt.Errorf("order %s line %d: ordered quantity cannot be negative, got %s", id, i+1, line.OrderedQty)
		}
		if line.ReceivedQty.IsNegative() {
			return nil, fmt.Errorf("order %s line %d: received quantity cannot be negative, got %s", id, i+1, line.ReceivedQty)
		}
	}

	return &Order{
		ID:         id,
		VendorName: vendorName,
		Status:     status,
		Lines:      lines,
	}, nil
}

// OrderLine is one committed-but-not-yet-received quantity, annotated with its
// parent order for the explain trace
type OrderLine struct {
	OrderID      string      `json:"order_id"`
	VendorName   string      `json:"vendor_name,omitempty"`
	Status       OrderStatus `json:"status"`
	ProductID    ProductID   `json:"product_id"`
	RemainingQty Quantity    `json:"remaining_qty"`
	Unit         Unit        `json:"unit"`
}

// SumRemaining totals the remaining quantity of the given lines
func SumRemaining(lines []OrderLine) Quantity {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.RemainingQty)
	}
	return total
}
