package events

import (
	"github.com/farmops/inputplan/pkg/domain/entities"
)

const (
	ReadinessComputedEvent = "readiness.computed"
	ProductBlockingEvent   = "product.blocking"
	FreightAllocatedEvent  = "freight.allocated"
	PriceRecordedEvent     = "price.recorded"
)

// Streams group events by aggregate
const (
	ReadinessStream = "readiness"
)

func InvoiceStream(invoiceID string) string             { return "invoice-" + invoiceID }
func ProductStream(productID entities.ProductID) string { return "product-" + string(productID) }

type ReadinessComputed struct {
	TotalCount    int `json:"total_count"`
	ReadyCount    int `json:"ready_count"`
	OnOrderCount  int `json:"on_order_count"`
	BlockingCount int `json:"blocking_count"`
}

type ProductBlocking struct {
	Item entities.ReadinessItem `json:"item"`
}

type FreightAllocated struct {
	InvoiceID    string                          `json:"invoice_id"`
	TotalCharges entities.Quantity               `json:"total_charges"`
	Lines        []entities.FreightAllocatedLine `json:"lines"`
}

type PriceRecorded struct {
	Entry entities.PriceHistoryEntry `json:"entry"`
}

func NewReadinessComputed(result entities.ReadinessResult) Event {
	return NewEvent(ReadinessComputedEvent, ReadinessStream, ReadinessComputed{
		TotalCount:    result.TotalCount(),
		ReadyCount:    result.ReadyCount(),
		OnOrderCount:  result.OnOrderCount(),
		BlockingCount: result.BlockingCount(),
	})
}

func NewProductBlocking(item entities.ReadinessItem) Event {
	return NewEvent(ProductBlockingEvent, ProductStream(item.ProductID), ProductBlocking{Item: item})
}

func NewFreightAllocated(invoiceID string, totalCharges entities.Quantity, lines []entities.FreightAllocatedLine) Event {
	return NewEvent(FreightAllocatedEvent, InvoiceStream(invoiceID), FreightAllocated{
		InvoiceID:    invoiceID,
		TotalCharges: totalCharges,
		Lines:        lines,
	})
}

func NewPriceRecorded(entry entities.PriceHistoryEntry) Event {
	return NewEvent(PriceRecordedEvent, ProductStream(entry.ProductID), PriceRecorded{Entry: entry})
}
