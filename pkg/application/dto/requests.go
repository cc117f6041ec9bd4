package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/farmops/inputplan/pkg/domain/entities"
)

type ProductInput struct {
	ID       entities.ProductID `json:"id"`
	Name     string             `json:"name"`
	Unit     entities.Unit      `json:"unit"`
	Category string             `json:"category"`
}

type PlanUsageInput struct {
	ProductID   entities.ProductID `json:"product_id"`
	TotalNeeded decimal.Decimal    `json:"total_needed"`
	Unit        entities.Unit      `json:"unit"`
	Usages      []entities.Usage   `json:"usages"`
}

type OrderItemInput struct {
	ProductID   entities.ProductID `json:"product_id"`
	OrderedQty  decimal.Decimal    `json:"ordered_qty"`
	ReceivedQty decimal.Decimal    `json:"received_qty"`
	Unit        entities.Unit      `json:"unit"`
	UnitPrice   decimal.Decimal    `json:"unit_price"`
}

type OrderInput struct {
	ID         string           `json:"id"`
	VendorName string           `json:"vendor_name"`
	Status     string           `json:"status"`
	Lines      []OrderItemInput `json:"lines"`
}

// ComputeReadinessRequest carries a full snapshot for an ad-hoc readiness run
type ComputeReadinessRequest struct {
	Products  []ProductInput          `json:"products"`
	PlanUsage []PlanUsageInput        `json:"plan_usage"`
	Inventory []entities.InventoryRow `json:"inventory"`
	Orders    []OrderInput            `json:"orders"`
}

// Snapshot validates the request and converts it to domain values
func (r ComputeReadinessRequest) Snapshot() (
	products []entities.Product,
	plan []entities.PlanUsageItem,
	inventory []entities.InventoryRow,
	orders []entities.Order,
	err error,
) {
	for _, p := range r.Products {
		products = append(products, entities.Product{
			ID:       p.ID,
			Name:     p.Name,
			Unit:     p.Unit,
			Category: entities.ParseProductCategory(p.Category),
		})
	}

	for i, u := range r.PlanUsage {
		if u.ProductID == "" {
			return nil, nil, nil, nil, &entities.ValidationError{Field: fmt.Sprintf("plan_usage[%d].product_id", i), Message: "product id cannot be empty"}
		}
		plan = append(plan, entities.PlanUsageItem{
			ProductID:   u.ProductID,
			TotalNeeded: u.TotalNeeded,
			Unit:        u.Unit,
			Usages:      u.Usages,
		})
	}

	for i, row := range r.Inventory {
		validated, verr := entities.NewInventoryRow(row.ProductID, row.Quantity, row.ContainerCount, row.Location, row.LotNumber)
		if verr != nil {
			return nil, nil, nil, nil, &entities.ValidationError{Field: fmt.Sprintf("inventory[%d]", i), Message: verr.Error()}
		}
		inventory = append(inventory, *validated)
	}

	for i, o := range r.Orders {
		status := entities.ParseOrderStatus(o.Status)
		if !status.Valid() {
			return nil, nil, nil, nil, &entities.ValidationError{Field: fmt.Sprintf("orders[%d].status", i), Message: fmt.Sprintf("unknown status %q", o.Status)}
		}
		items := make([]entities.OrderItem, 0, len(o.Lines))
		for _, l := range o.Lines {
			items = append(items, entities.OrderItem{
				ProductID:   l.ProductID,
				OrderedQty:  l.OrderedQty,
				ReceivedQty: l.ReceivedQty,
				Unit:        l.Unit,
				UnitPrice:   l.UnitPrice,
			})
		}
		order, verr := entities.NewOrder(o.ID, o.VendorName, status, items)
		if verr != nil {
			return nil, nil, nil, nil, &entities.ValidationError{Field: fmt.Sprintf("orders[%d]", i), Message: verr.Error()}
		}
		orders = append(orders, *order)
	}

	return products, plan, inventory, orders, nil
}

// SettlementView is returned after an invoice is settled
type SettlementView struct {
	Allocation FreightAllocationView `json:"allocation"`
	Recorded   []PriceHistoryView    `json:"recorded"`
}
