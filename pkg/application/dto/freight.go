package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/domain/services"
)

// FreightLine is one invoice line in a request body
type FreightLine struct {
	ProductID   entities.ProductID `json:"product_id"`
	ProductName string             `json:"product_name"`
	Quantity    decimal.Decimal    `json:"quantity"`
	Unit        entities.Unit      `json:"unit"`
	UnitPrice   decimal.Decimal    `json:"unit_price"`
}

// FreightAllocationRequest previews an allocation without recording prices
type FreightAllocationRequest struct {
	Lines         []FreightLine   `json:"lines"`
	FreightCharge decimal.Decimal `json:"freight_charge"`
	OtherCharges  decimal.Decimal `json:"other_charges"`
}

func (r FreightAllocationRequest) TotalCharges() decimal.Decimal {
	return r.FreightCharge.Add(r.OtherCharges)
}

func (r FreightAllocationRequest) LineInputs() []entities.FreightLineInput {
	return toLineInputs(r.Lines)
}

// InvoiceRequest settles an invoice and records landed costs
type InvoiceRequest struct {
	ID            string          `json:"id"`
	VendorName    string          `json:"vendor_name"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	Lines         []FreightLine   `json:"lines"`
	FreightCharge decimal.Decimal `json:"freight_charge"`
	OtherCharges  decimal.Decimal `json:"other_charges"`
}

func (r InvoiceRequest) ToInvoice() entities.Invoice {
	return entities.Invoice{
		ID:            r.ID,
		VendorName:    r.VendorName,
		InvoiceDate:   r.InvoiceDate,
		Lines:         toLineInputs(r.Lines),
		FreightCharge: r.FreightCharge,
		OtherCharges:  r.OtherCharges,
	}
}

func toLineInputs(lines []FreightLine) []entities.FreightLineInput {
	out := make([]entities.FreightLineInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, entities.FreightLineInput{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
		})
	}
	return out
}

// AllocatedLineView presents money at cents. Allocations are rounded by largest
// remainder so they sum to TotalCharges and never go negative.
type AllocatedLineView struct {
	ProductID        entities.ProductID `json:"product_id"`
	ProductName      string             `json:"product_name"`
	Quantity         decimal.Decimal    `json:"quantity"`
	Unit             entities.Unit      `json:"unit"`
	UnitPrice        decimal.Decimal    `json:"unit_price"`
	Subtotal         decimal.Decimal    `json:"subtotal"`
	Weight           decimal.Decimal    `json:"weight_lbs"`
	AllocatedFreight decimal.Decimal    `json:"allocated_freight"`
	LandedUnitCost   decimal.Decimal    `json:"landed_unit_cost"`
}

type FreightAllocationView struct {
	InvoiceID    string              `json:"invoice_id,omitempty"`
	TotalCharges decimal.Decimal     `json:"total_charges"`
	TotalWeight  decimal.Decimal     `json:"total_weight_lbs"`
	Lines        []AllocatedLineView `json:"lines"`
}

// NewFreightAllocationView converts allocated lines for presentation
func NewFreightAllocationView(invoiceID string, lines []entities.FreightAllocatedLine, totalCharges decimal.Decimal) FreightAllocationView {
	rounded := services.RoundAllocationsToCents(lines, totalCharges)
	view := FreightAllocationView{
		InvoiceID:    invoiceID,
		TotalCharges: services.RoundCents(totalCharges),
		TotalWeight:  decimal.Zero,
		Lines:        make([]AllocatedLineView, 0, len(lines)),
	}
	for i, l := range lines {
		view.TotalWeight = view.TotalWeight.Add(l.Weight)
		view.Lines = append(view.Lines, AllocatedLineView{
			ProductID:        l.ProductID,
			ProductName:      l.ProductName,
			Quantity:         l.Quantity,
			Unit:             l.Unit,
			UnitPrice:        l.UnitPrice,
			Subtotal:         services.RoundCents(l.Subtotal),
			Weight:           l.Weight,
			AllocatedFreight: rounded[i],
			LandedUnitCost:   services.RoundCents(l.LandedUnitCost),
		})
	}
	return view
}

// PriceHistoryView is the wire form of a recorded landed cost
type PriceHistoryView struct {
	ProductID      entities.ProductID `json:"product_id"`
	VendorName     string             `json:"vendor_name"`
	InvoiceID      string             `json:"invoice_id"`
	Unit           entities.Unit      `json:"unit"`
	UnitPrice      decimal.Decimal    `json:"unit_price"`
	LandedUnitCost decimal.Decimal    `json:"landed_unit_cost"`
	RecordedAt     time.Time          `json:"recorded_at"`
}

func NewPriceHistoryViews(entries []entities.PriceHistoryEntry) []PriceHistoryView {
	out := make([]PriceHistoryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, PriceHistoryView{
			ProductID:      e.ProductID,
			VendorName:     e.VendorName,
			InvoiceID:      e.InvoiceID,
			Unit:           e.Unit,
			UnitPrice:      e.UnitPrice,
			LandedUnitCost: services.RoundCents(e.LandedUnitCost),
			RecordedAt:     e.RecordedAt,
		})
	}
	return out
}
