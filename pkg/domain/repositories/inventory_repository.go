package repositories

import (
	"context"

	"github.com/farmops/inputplan/pkg/domain/entities"
)

// InventorySource provides raw inventory rows; several rows may exist per product
type InventorySource interface {
	GetInventoryRows(ctx context.Context) ([]entities.InventoryRow, error)
}

// InventoryRepository is an InventorySource with write access
type InventoryRepository interface {
	InventorySource
	GetInventoryRowsForProduct(ctx context.Context, productID entities.ProductID) ([]entities.InventoryRow, error)
	LoadInventoryRows(ctx context.Context, rows []entities.InventoryRow) error
}
