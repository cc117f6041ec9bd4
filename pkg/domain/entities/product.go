package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ProductID represents a unique farm-input product identifier
type ProductID string

// Quantity is a non-negative amount expressed in a product's unit of measure
type Quantity = decimal.Decimal

// Unit is an opaque unit-of-measure label. The engine never converts between units.
type Unit string

// Normalized returns the unit lower-cased with surrounding whitespace removed
func (u Unit) Normalized() string {
	return strings.ToLower(strings.TrimSpace(string(u)))
}

// ProductCategory groups products for display
type ProductCategory int

const (
	Fertilizer ProductCategory = iota
	Chemical
	Seed
	Other
)

// String method for ProductCategory enum
func (c ProductCategory) String() string {
	switch c {
	case Fertilizer:
		return "Fertilizer"
	case Chemical:
		return "Chemical"
	case Seed:
		return "Seed"
	default:
		return "Other"
	}
}

// ParseProductCategory maps a category name to its enum value; unknown names map to Other
func ParseProductCategory(s string) ProductCategory {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fertilizer":
		return Fertilizer
	case "chemical":
		return Chemical
	case "seed":
		return Seed
	default:
		return Other
	}
}

// Product represents a catalog entry for a farm input
type Product struct {
	ID       ProductID
	Name     string
	Unit     Unit
	Category ProductCategory
}

// DisplayName returns the product name, falling back to its identifier
func (p Product) DisplayName() string {
	if strings.TrimSpace(p.Name) == "" {
		return string(p.ID)
	}
	return p.Name
}

// ClampNonNegative returns q, or zero when q is negative
func ClampNonNegative(q Quantity) Quantity {
	if q.IsNegative() {
		return decimal.Zero
	}
	return q
}
