package services

import (
	"github.com/shopspring/decimal"

	"github.com/farmops/inputplan/pkg/domain/entities"
)

// InventoryAdapter reads canonical inventory rows out of an arbitrary record
// shape. ContainerCount is optional.
type InventoryAdapter[T any] struct {
	ProductID      func(T) entities.ProductID
	Quantity       func(T) decimal.Decimal
	ContainerCount func(T) *int
}

// Rows converts records to InventoryRows, preserving input order
func (a InventoryAdapter[T]) Rows(records []T) []entities.InventoryRow {
	rows := make([]entities.InventoryRow, 0, len(records))
	for _, rec := range records {
		row := entities.InventoryRow{
			ProductID: a.ProductID(rec),
			Quantity:  a.Quantity(rec),
		}
		if a.ContainerCount != nil {
			row.ContainerCount = a.ContainerCount(rec)
		}
		rows = append(rows, row)
	}
	return rows
}

// OrderAdapter flattens an arbitrary order shape O with line shape L into
// annotated OrderLines. Status is informational only.
type OrderAdapter[O, L any] struct {
	OrderID          func(O) string
	Status           func(O) entities.OrderStatus
	VendorName       func(O) string
	Lines            func(O) []L
	LineProductID    func(L) entities.ProductID
	LineRemainingQty func(L) decimal.Decimal
	LineUnit         func(L) entities.Unit
}

// Flatten converts orders to OrderLines in order-then-line sequence
func (a OrderAdapter[O, L]) Flatten(orders []O) []entities.OrderLine {
	var out []entities.OrderLine
	for _, order := range orders {
		orderID := a.OrderID(order)
		var vendor string
		if a.VendorName != nil {
			vendor = a.VendorName(order)
		}
		var status entities.OrderStatus
		if a.Status != nil {
			status = a.Status(order)
		}
		for _, line := range a.Lines(order) {
			var unit entities.Unit
			if a.LineUnit != nil {
				unit = a.LineUnit(line)
			}
			out = append(out, entities.OrderLine{
				OrderID:      orderID,
				VendorName:   vendor,
				Status:       status,
				ProductID:    a.LineProductID(line),
				RemainingQty: a.LineRemainingQty(line),
				Unit:         unit,
			})
		}
	}
	return out
}

// PurchaseOrderAdapter reads the domain's own Order type
var PurchaseOrderAdapter = OrderAdapter[entities.Order, entities.OrderItem]{
	OrderID:          func(o entities.Order) string { return o.ID },
	Status:           func(o entities.Order) entities.OrderStatus { return o.Status },
	VendorName:       func(o entities.Order) string { return o.VendorName },
	Lines:            func(o entities.Order) []entities.OrderItem { return o.Lines },
	LineProductID:    func(l entities.OrderItem) entities.ProductID { return l.ProductID },
	LineRemainingQty: func(l entities.OrderItem) decimal.Decimal { return l.RemainingQty() },
	LineUnit:         func(l entities.OrderItem) entities.Unit { return l.Unit },
}

// FilterCommitted keeps the lines whose parent order is in one of the given
// statuses. With no statuses, DefaultCommittedStatuses applies.
func FilterCommitted(lines []entities.OrderLine, statuses ...entities.OrderStatus) []entities.OrderLine {
	if len(statuses) == 0 {
		statuses = entities.DefaultCommittedStatuses
	}
	committed := make(map[entities.OrderStatus]bool, len(statuses))
	for _, s := range statuses {
		committed[s] = true
	}

	out := make([]entities.OrderLine, 0, len(lines))
	for _, line := range lines {
		if committed[line.Status] {
			out = append(out, line)
		}
	}
	return out
}
