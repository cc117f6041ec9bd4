package entities

import (
	"sort"

	"github.com/shopspring/decimal"
)

// FreightLineInput is one invoice or purchase line entering freight allocation
type FreightLineInput struct {
	ProductID   ProductID
	ProductName string
	Quantity    Quantity
	Unit        Unit
	UnitPrice   decimal.Decimal
}

// Subtotal returns quantity × unit price
func (l FreightLineInput) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// FreightAllocatedLine is a line after freight proration
type FreightAllocatedLine struct {
	FreightLineInput
	Subtotal         decimal.Decimal
	Weight           decimal.Decimal
	AllocatedFreight decimal.Decimal
	LandedUnitCost   decimal.Decimal
}

// WeightTable maps a unit of measure to pounds per unit. It is an approximate
// model used only for proportional allocation.
type WeightTable map[string]decimal.Decimal

// DefaultWeightTable returns the built-in unit multipliers
func DefaultWeightTable() WeightTable {
	ton := decimal.NewFromInt(2000)
	lb := decimal.NewFromInt(1)
	gal := decimal.NewFromInt(10) // average ag liquid
	return WeightTable{
		"ton":     ton,
		"tons":    ton,
		"lb":      lb,
		"lbs":     lb,
		"pound":   lb,
		"pounds":  lb,
		"gal":     gal,
		"gallon":  gal,
		"gallons": gal,
		"oz":      decimal.RequireFromString("0.0625"),
	}
}

// NewWeightTable builds a table from the defaults plus float overrides, as
// read from configuration
func NewWeightTable(overrides map[string]float64) WeightTable {
	t := DefaultWeightTable()
	for unit, mult := range overrides {
		t = t.With(Unit(unit), decimal.NewFromFloat(mult))
	}
	return t
}

// With returns a copy of the table with unit mapped to multiplier
func (t WeightTable) With(unit Unit, multiplier decimal.Decimal) WeightTable {
	out := make(WeightTable, len(t)+1)
	for k, v := range t {
		out[k] = v
	}
	out[unit.Normalized()] = multiplier
	return out
}

// Multiplier returns the pounds-per-unit factor, or zero for unmapped units
func (t WeightTable) Multiplier(unit Unit) decimal.Decimal {
	if m, ok := t[unit.Normalized()]; ok {
		return m
	}
	return decimal.Zero
}

// Units lists the mapped units in sorted order
func (t WeightTable) Units() []string {
	units := make([]string, 0, len(t))
	for k := range t {
		units = append(units, k)
	}
	sort.Strings(units)
	return units
}
