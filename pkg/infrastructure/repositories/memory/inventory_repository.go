package memory

import (
	"context"
	"sync"

	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/domain/repositories"
)

// InventoryRepository provides in-memory inventory storage
type InventoryRepository struct {
	rows []entities.InventoryRow
	mu   sync.RWMutex
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		rows: []entities.InventoryRow{},
	}
}

// Verify interface compliance
var _ repositories.InventoryRepository = (*InventoryRepository)(nil)

// LoadInventoryRows loads inventory rows into the repository
func (r *InventoryRepository) LoadInventoryRows(ctx context.Context, rows []entities.InventoryRow) error {
	for _, row := range rows {
		r.AddInventoryRow(row)
	}
	return nil
}

// AddInventoryRow adds one inventory row. Rows for the same product accumulate.
func (r *InventoryRepository) AddInventoryRow(row entities.InventoryRow) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows = append(r.rows, row)
}

// GetInventoryRows returns every inventory row in insertion order
func (r *InventoryRepository) GetInventoryRows(ctx context.Context) ([]entities.InventoryRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]entities.InventoryRow(nil), r.rows...), nil
}

// GetInventoryRowsForProduct returns all rows for a product
func (r *InventoryRepository) GetInventoryRowsForProduct(ctx context.Context, productID entities.ProductID) ([]entities.InventoryRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []entities.InventoryRow
	for _, row := range r.rows {
		if row.ProductID == productID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// GetAvailableQuantity returns the total on-hand quantity for a product
func (r *InventoryRepository) GetAvailableQuantity(ctx context.Context, productID entities.ProductID) (entities.Quantity, error) {
	rows, err := r.GetInventoryRowsForProduct(ctx, productID)
	if err != nil {
		return entities.Quantity{}, err
	}
	return entities.SumInventory(rows), nil
}
