package services

import (
	"github.com/shopspring/decimal"

	"github.com/farmops/inputplan/pkg/domain/entities"
)

// ComputeReadiness reconciles planned demand against on-hand inventory and
// committed order lines. orders must already be filtered to committed
// statuses; status is not re-checked here.
//
// Every inventory row and order line matching a product is summed, not just
// the first. Items are emitted in demand order and never share backing arrays
// with the inputs.
func ComputeReadiness(
	planned []entities.DemandLine,
	inventory []entities.InventoryRow,
	orders []entities.OrderLine,
) entities.ReadinessResult {
	rowsByProduct := make(map[entities.ProductID][]entities.InventoryRow)
	for _, row := range inventory {
		rowsByProduct[row.ProductID] = append(rowsByProduct[row.ProductID], row)
	}

	linesByProduct := make(map[entities.ProductID][]entities.OrderLine)
	for _, line := range orders {
		linesByProduct[line.ProductID] = append(linesByProduct[line.ProductID], line)
	}

	items := make([]entities.ReadinessItem, 0, len(planned))
	for _, demand := range planned {
		items = append(items, reconcileLine(demand, rowsByProduct[demand.ProductID], linesByProduct[demand.ProductID]))
	}

	return entities.ReadinessResult{Items: items}
}

func reconcileLine(
	demand entities.DemandLine,
	rows []entities.InventoryRow,
	lines []entities.OrderLine,
) entities.ReadinessItem {
	onHand := entities.SumInventory(rows)
	onOrder := entities.SumRemaining(lines)
	short := decimal.Max(decimal.Zero, demand.RequiredQty.Sub(onHand).Sub(onOrder))
	status := ClassifyReadiness(demand.RequiredQty, onHand, onOrder)

	return entities.ReadinessItem{
		ProductID:   demand.ProductID,
		Label:       demand.Label,
		RequiredQty: demand.RequiredQty,
		PlannedUnit: demand.Unit,
		OnHandQty:   onHand,
		OnOrderQty:  onOrder,
		ShortQty:    short,
		Status:      status,
		Explain: entities.ReadinessExplain{
			RequiredQty:   demand.RequiredQty,
			OnHandQty:     onHand,
			OnOrderQty:    onOrder,
			ShortQty:      short,
			PlannedUnit:   demand.Unit,
			InventoryRows: append([]entities.InventoryRow(nil), rows...),
			OrderLines:    append([]entities.OrderLine(nil), lines...),
		},
	}
}

// ClassifyReadiness applies the coverage precedence: on hand alone covers the
// requirement, then on hand plus on order, else the product is blocking.
func ClassifyReadiness(required, onHand, onOrder decimal.Decimal) entities.ReadinessStatus {
	switch {
	case onHand.GreaterThanOrEqual(required):
		return entities.Ready
	case onHand.Add(onOrder).GreaterThanOrEqual(required):
		return entities.OnOrder
	default:
		return entities.Blocking
	}
}
