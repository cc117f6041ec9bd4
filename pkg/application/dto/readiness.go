package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmops/inputplan/pkg/domain/entities"
)

// ReadinessReport is the wire form of a readiness run. Quantities encode as
// decimal strings.
type ReadinessReport struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Summary     ReadinessSummary    `json:"summary"`
	Items       []ReadinessItemView `json:"items"`
}

// ReadinessSummary holds counts derived from the items at encode time
type ReadinessSummary struct {
	Total    int `json:"total"`
	Ready    int `json:"ready"`
	OnOrder  int `json:"on_order"`
	Blocking int `json:"blocking"`
}

type ReadinessItemView struct {
	ProductID   entities.ProductID       `json:"product_id"`
	Label       string                   `json:"label"`
	Status      entities.ReadinessStatus `json:"status"`
	PlannedUnit entities.Unit            `json:"planned_unit"`
	RequiredQty decimal.Decimal          `json:"required_qty"`
	OnHandQty   decimal.Decimal          `json:"on_hand_qty"`
	OnOrderQty  decimal.Decimal          `json:"on_order_qty"`
	ShortQty    decimal.Decimal          `json:"short_qty"`
	Explain     *ExplainView             `json:"explain,omitempty"`
}

type ExplainView struct {
	InventoryRows []entities.InventoryRow `json:"inventory_rows"`
	OrderLines    []entities.OrderLine    `json:"order_lines"`
}

// NewReadinessReport converts a result, optionally keeping the explain trace
func NewReadinessReport(result entities.ReadinessResult, generatedAt time.Time, withExplain bool) ReadinessReport {
	report := ReadinessReport{
		GeneratedAt: generatedAt,
		Summary: ReadinessSummary{
			Total:    result.TotalCount(),
			Ready:    result.ReadyCount(),
			OnOrder:  result.OnOrderCount(),
			Blocking: result.BlockingCount(),
		},
		Items: make([]ReadinessItemView, 0, len(result.Items)),
	}

	for _, item := range result.Items {
		view := ReadinessItemView{
			ProductID:   item.ProductID,
			Label:       item.Label,
			Status:      item.Status,
			PlannedUnit: item.PlannedUnit,
			RequiredQty: item.RequiredQty,
			OnHandQty:   item.OnHandQty,
			OnOrderQty:  item.OnOrderQty,
			ShortQty:    item.ShortQty,
		}
		if withExplain {
			view.Explain = &ExplainView{
				InventoryRows: nonNil(item.Explain.InventoryRows),
				OrderLines:    nonNil(item.Explain.OrderLines),
			}
		}
		report.Items = append(report.Items, view)
	}
	return report
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
