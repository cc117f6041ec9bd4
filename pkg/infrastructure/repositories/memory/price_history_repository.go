package memory

import (
	"context"
	"sync"

	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/domain/repositories"
)

// PriceHistoryRepository provides in-memory price history storage
type PriceHistoryRepository struct {
	entries map[entities.ProductID][]entities.PriceHistoryEntry
	mu      sync.RWMutex
}

// NewPriceHistoryRepository creates a new in-memory price history repository
func NewPriceHistoryRepository() *PriceHistoryRepository {
	return &PriceHistoryRepository{
		entries: make(map[entities.ProductID][]entities.PriceHistoryEntry),
	}
}

// Verify interface compliance
var _ repositories.PriceHistoryStore = (*PriceHistoryRepository)(nil)

// RecordPrices appends entries to each product's history
func (r *PriceHistoryRepository) RecordPrices(ctx context.Context, entries []entities.PriceHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		r.entries[e.ProductID] = append(r.entries[e.ProductID], e)
	}
	return nil
}

// GetPriceHistory returns a product's entries in recording order
func (r *PriceHistoryRepository) GetPriceHistory(ctx context.Context, productID entities.ProductID) ([]entities.PriceHistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]entities.PriceHistoryEntry(nil), r.entries[productID]...), nil
}
