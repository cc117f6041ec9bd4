package repositories

import (
	"context"

	"github.com/farmops/inputplan/pkg/domain/entities"
)

// PlanDemandSource provides raw plan usage, one or more records per product
type PlanDemandSource interface {
	GetPlanUsage(ctx context.Context) ([]entities.PlanUsageItem, error)
}

// DemandRepository is a PlanDemandSource that can also be loaded
type DemandRepository interface {
	PlanDemandSource
	LoadPlanUsage(ctx context.Context, items []entities.PlanUsageItem) error
}
