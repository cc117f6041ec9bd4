package entities

// Usage records where a product is applied in the crop plan
type Usage struct {
	CropName   string `json:"crop_name"`
	TimingName string `json:"timing_name"`
}

// PlanUsageItem is one raw usage record from the plan demand source.
// A product may appear in several records, one per crop or pass.
type PlanUsageItem struct {
	ProductID   ProductID
	TotalNeeded Quantity
	Unit        Unit
	Usages      []Usage
}

// DemandLine represents one product's aggregate requirement for a planning horizon
type DemandLine struct {
	ProductID   ProductID
	Label       string
	RequiredQty Quantity
	Unit        Unit
	ContextCrop string
	ContextPass string
	Usages      []Usage
}

// ID returns the demand line identity, which is its product
func (d DemandLine) ID() ProductID {
	return d.ProductID
}
