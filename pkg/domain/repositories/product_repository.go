package repositories

import (
	"context"

	"github.com/farmops/inputplan/pkg/domain/entities"
)

// ProductRepository provides access to the product catalog
type ProductRepository interface {
	GetProduct(ctx context.Context, id entities.ProductID) (*entities.Product, error)
	GetAllProducts(ctx context.Context) ([]entities.Product, error)
	LoadProducts(ctx context.Context, products []entities.Product) error
}
