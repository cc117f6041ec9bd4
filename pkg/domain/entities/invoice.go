package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a vendor invoice or settlement event carrying shared charges
type Invoice struct {
	ID            string
	VendorName    string
	InvoiceDate   time.Time
	Lines         []FreightLineInput
	FreightCharge decimal.Decimal
	OtherCharges  decimal.Decimal
}

// TotalCharges returns the charges to be prorated across lines
func (i Invoice) TotalCharges() decimal.Decimal {
	return i.FreightCharge.Add(i.OtherCharges)
}

// Validate checks the invoice before settlement
func (i Invoice) Validate() error {
	if i.ID == "" {
		return &ValidationError{Field: "id", Message: "invoice id cannot be empty"}
	}
	if len(i.Lines) == 0 {
		return fmt.Errorf("invoice %s: %w", i.ID, ErrEmptyInvoice)
	}
	if i.TotalCharges().IsNegative() {
		return &ValidationError{Field: "charges", Message: fmt.Sprintf("total charges cannot be negative, got %s", i.TotalCharges())}
	}
	return ValidateFreightLines(i.Lines)
}

// ValidateFreightLines checks the lines of an invoice or an allocation preview
func ValidateFreightLines(lines []FreightLineInput) error {
	for n, line := range lines {
		if string(line.ProductID) == "" {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].product_id", n), Message: "product id cannot be empty"}
		}
		if line.Quantity.IsNegative() {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].quantity", n), Message: fmt.Sprintf("quantity cannot be negative, got %s", line.Quantity)}
		}
		if line.UnitPrice.IsNegative() {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].unit_price", n), Message: fmt.Sprintf("unit price cannot be negative, got %s", line.UnitPrice)}
		}
	}
	return nil
}

// PriceHistoryEntry records a purchase price and its landed cost
type PriceHistoryEntry struct {
	ProductID      ProductID
	VendorName     string
	InvoiceID      string
	Unit           Unit
	UnitPrice      decimal.Decimal
	LandedUnitCost decimal.Decimal
	RecordedAt     time.Time
}
