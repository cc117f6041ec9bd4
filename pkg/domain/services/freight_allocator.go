package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/farmops/inputplan/pkg/domain/entities"
)

// FreightAllocator prorates a shared charge across lines by normalized weight.
// It holds no per-call state and is safe for concurrent use.
type FreightAllocator struct {
	weights entities.WeightTable
}

// NewFreightAllocator creates an allocator using the given weight table; a nil
// table falls back to the defaults
func NewFreightAllocator(weights entities.WeightTable) *FreightAllocator {
	if weights == nil {
		weights = entities.DefaultWeightTable()
	}
	return &FreightAllocator{weights: weights}
}

// AllocateFreight prorates totalCharges with the default weight table
func AllocateFreight(lines []entities.FreightLineInput, totalCharges decimal.Decimal) []entities.FreightAllocatedLine {
	return NewFreightAllocator(nil).Allocate(lines, totalCharges)
}

// Allocate returns one allocated line per input line, in input order.
//
// The last line with non-zero weight absorbs the rounding remainder, so the
// allocated amounts always sum to exactly totalCharges. When no line has
// weight, nothing is allocated and landed cost falls back to unit price.
func (a *FreightAllocator) Allocate(lines []entities.FreightLineInput, totalCharges decimal.Decimal) []entities.FreightAllocatedLine {
	out := make([]entities.FreightAllocatedLine, len(lines))

	totalWeight := decimal.Zero
	last := -1
	for i, line := range lines {
		weight := line.Quantity.Mul(a.weights.Multiplier(line.Unit))
		out[i] = entities.FreightAllocatedLine{
			FreightLineInput: line,
			Subtotal:         line.Subtotal(),
			Weight:           weight,
			AllocatedFreight: decimal.Zero,
		}
		totalWeight = totalWeight.Add(weight)
		if !weight.IsZero() {
			last = i
		}
	}

	if totalWeight.IsZero() {
		for i := range out {
			out[i].LandedUnitCost = out[i].UnitPrice
		}
		return out
	}

	allocated := decimal.Zero
	for i := range out {
		switch {
		case i == last:
			out[i].AllocatedFreight = totalCharges.Sub(allocated)
		case !out[i].Weight.IsZero():
			out[i].AllocatedFreight = totalCharges.Mul(out[i].Weight).Div(totalWeight)
		}
		allocated = allocated.Add(out[i].AllocatedFreight)
		out[i].LandedUnitCost = landedUnitCost(out[i].Subtotal, out[i].AllocatedFreight, out[i].Quantity)
	}

	return out
}

func landedUnitCost(subtotal, freight, quantity decimal.Decimal) decimal.Decimal {
	if quantity.IsZero() {
		return decimal.Zero
	}
	return subtotal.Add(freight).Div(quantity)
}

// TotalAllocated sums the allocated freight of the given lines
func TotalAllocated(lines []entities.FreightAllocatedLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.AllocatedFreight)
	}
	return total
}

// RoundCents rounds a money value to two decimal places for presentation
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundAllocationsToCents rounds each line's allocation to cents so the
// rounded amounts sum to totalCharges rounded to cents. Every line is truncated
// to cents and the leftover cents go one each to the lines with the largest
// truncated remainders, later lines first on ties. No rounded amount is negative
// and a line allocated nothing stays at zero.
func RoundAllocationsToCents(lines []entities.FreightAllocatedLine, totalCharges decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(lines))
	remainders := make([]decimal.Decimal, len(lines))
	order := make([]int, 0, len(lines))
	sum := decimal.Zero
	for i, line := range lines {
		out[i] = line.AllocatedFreight.Truncate(2)
		remainders[i] = line.AllocatedFreight.Sub(out[i])
		sum = sum.Add(out[i])
		if !line.AllocatedFreight.IsZero() {
			order = append(order, i)
		}
	}
	if len(order) == 0 {
		return out
	}

	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := remainders[order[a]], remainders[order[b]]
		if !ra.Equal(rb) {
			return ra.GreaterThan(rb)
		}
		return order[a] > order[b]
	})

	cent := decimal.New(1, -2)
	leftover := RoundCents(totalCharges).Sub(sum).Div(cent).IntPart()
	for n := 0; n < len(order) && int64(n) < leftover; n++ {
		out[order[n]] = out[order[n]].Add(cent)
	}
	return out
}
