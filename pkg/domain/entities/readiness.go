package entities

import "fmt"

// ReadinessStatus classifies how well a product's planned usage is covered
type ReadinessStatus int

const (
	Ready ReadinessStatus = iota
	OnOrder
	Blocking
)

// String method for ReadinessStatus enum
func (s ReadinessStatus) String() string {
	switch s {
	case Ready:
		return "READY"
	case OnOrder:
		return "ON_ORDER"
	case Blocking:
		return "BLOCKING"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the status by name
func (s ReadinessStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name
func (s *ReadinessStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "READY":
		*s = Ready
	case "ON_ORDER":
		*s = OnOrder
	case "BLOCKING":
		*s = Blocking
	default:
		return fmt.Errorf("unknown readiness status %q", string(text))
	}
	return nil
}

// ReadinessExplain is the audit trace behind one readiness item. The rows and
// lines are the literal evidence set: totals re-derive from them.
type ReadinessExplain struct {
	RequiredQty   Quantity
	OnHandQty     Quantity
	OnOrderQty    Quantity
	ShortQty      Quantity
	PlannedUnit   Unit
	InventoryRows []InventoryRow
	OrderLines    []OrderLine
}

// Reconciles reports whether the trace totals match its evidence
func (e ReadinessExplain) Reconciles() bool {
	return SumInventory(e.InventoryRows).Equal(e.OnHandQty) &&
		SumRemaining(e.OrderLines).Equal(e.OnOrderQty)
}

// ReadinessItem is one row of a reconciliation result
type ReadinessItem struct {
	ProductID   ProductID
	Label       string
	RequiredQty Quantity
	PlannedUnit Unit
	OnHandQty   Quantity
	OnOrderQty  Quantity
	ShortQty    Quantity
	Status      ReadinessStatus
	Explain     ReadinessExplain
}

// ReadinessResult is the aggregate output of a reconciliation run.
// Counts are derived from Items on every call.
type ReadinessResult struct {
	Items []ReadinessItem
}

func (r ReadinessResult) TotalCount() int    { return len(r.Items) }
func (r ReadinessResult) ReadyCount() int    { return r.countStatus(Ready) }
func (r ReadinessResult) OnOrderCount() int  { return r.countStatus(OnOrder) }
func (r ReadinessResult) BlockingCount() int { return r.countStatus(Blocking) }

func (r ReadinessResult) countStatus(status ReadinessStatus) int {
	n := 0
	for _, item := range r.Items {
		if item.Status == status {
			n++
		}
	}
	return n
}

// ByStatus returns the items with the given status, in result order
func (r ReadinessResult) ByStatus(status ReadinessStatus) []ReadinessItem {
	var items []ReadinessItem
	for _, item := range r.Items {
		if item.Status == status {
			items = append(items, item)
		}
	}
	return items
}

// Find returns the item for a product, if present
func (r ReadinessResult) Find(productID ProductID) (ReadinessItem, bool) {
	for _, item := range r.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return ReadinessItem{}, false
}
