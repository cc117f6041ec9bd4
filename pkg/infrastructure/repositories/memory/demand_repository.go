package memory

import (
	"context"
	"sync"

	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/domain/repositories"
)

// DemandRepository provides in-memory plan usage storage
type DemandRepository struct {
	usage []entities.PlanUsageItem
	mu    sync.RWMutex
}

// NewDemandRepository creates a new in-memory demand repository
func NewDemandRepository() *DemandRepository {
	return &DemandRepository{
		usage: make([]entities.PlanUsageItem, 0),
	}
}

// Verify interface compliance
var _ repositories.DemandRepository = (*DemandRepository)(nil)

// GetPlanUsage returns all plan usage records
func (r *DemandRepository) GetPlanUsage(ctx context.Context) ([]entities.PlanUsageItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]entities.PlanUsageItem(nil), r.usage...), nil
}

// LoadPlanUsage appends plan usage records
func (r *DemandRepository) LoadPlanUsage(ctx context.Context, items []entities.PlanUsageItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.usage = append(r.usage, items...)
	return nil
}
