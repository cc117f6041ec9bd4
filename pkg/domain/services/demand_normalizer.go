package services

import (
	"github.com/farmops/inputplan/pkg/domain/entities"
)

// ProductCatalog resolves product metadata for display
type ProductCatalog interface {
	GetProduct(id entities.ProductID) (entities.Product, bool)
}

// Catalog is a ProductCatalog over a snapshot of products
type Catalog map[entities.ProductID]entities.Product

// NewCatalog indexes products by id; later duplicates win
func NewCatalog(products []entities.Product) Catalog {
	c := make(Catalog, len(products))
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

// GetProduct implements ProductCatalog
func (c Catalog) GetProduct(id entities.ProductID) (entities.Product, bool) {
	p, ok := c[id]
	return p, ok
}

// NormalizeDemand merges raw plan usage into one DemandLine per product.
// Required quantities are summed across records and usages concatenated; the
// first usage supplies the representative crop and pass. Products with no
// positive requirement are omitted. Lines are returned in order of first
// appearance. catalog may be nil.
func NormalizeDemand(raw []entities.PlanUsageItem, catalog ProductCatalog) []entities.DemandLine {
	index := make(map[entities.ProductID]int)
	var lines []entities.DemandLine

	for _, item := range raw {
		i, seen := index[item.ProductID]
		if !seen {
			i = len(lines)
			index[item.ProductID] = i
			lines = append(lines, entities.DemandLine{
				ProductID:   item.ProductID,
				RequiredQty: item.TotalNeeded,
				Unit:        item.Unit,
			})
		} else {
			lines[i].RequiredQty = lines[i].RequiredQty.Add(item.TotalNeeded)
			if lines[i].Unit == "" {
				lines[i].Unit = item.Unit
			}
		}
		lines[i].Usages = append(lines[i].Usages, item.Usages...)
	}

	out := make([]entities.DemandLine, 0, len(lines))
	for _, line := range lines {
		if !line.RequiredQty.IsPositive() {
			continue
		}

		line.Label = string(line.ProductID)
		if catalog != nil {
			if product, ok := catalog.GetProduct(line.ProductID); ok {
				line.Label = product.DisplayName()
				if line.Unit == "" {
					line.Unit = product.Unit
				}
			}
		}
		if len(line.Usages) > 0 {
			line.ContextCrop = line.Usages[0].CropName
			line.ContextPass = line.Usages[0].TimingName
		}
		out = append(out, line)
	}

	return out
}
