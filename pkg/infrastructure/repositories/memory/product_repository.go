package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/domain/repositories"
)

// ProductRepository provides in-memory product catalog storage
type ProductRepository struct {
	products    []entities.Product
	productsMap map[entities.ProductID]int
	mu          sync.RWMutex
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(expectedProducts int) *ProductRepository {
	return &ProductRepository{
		products:    make([]entities.Product, 0, expectedProducts),
		productsMap: make(map[entities.ProductID]int, expectedProducts),
	}
}

// Verify interface compliance
var _ repositories.ProductRepository = (*ProductRepository)(nil)

// LoadProducts loads products into the repository
func (r *ProductRepository) LoadProducts(ctx context.Context, products []entities.Product) error {
	for _, p := range products {
		r.AddProduct(p)
	}
	return nil
}

// AddProduct adds or replaces a product
func (r *ProductRepository) AddProduct(product entities.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index, exists := r.productsMap[product.ID]; exists {
		r.products[index] = product
		return
	}
	r.productsMap[product.ID] = len(r.products)
	r.products = append(r.products, product)
}

// GetProduct returns catalog data for a product
func (r *ProductRepository) GetProduct(ctx context.Context, id entities.ProductID) (*entities.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.productsMap[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrProductNotFound, id)
	}
	product := r.products[index]
	return &product, nil
}

// GetAllProducts returns all products in insertion order
func (r *ProductRepository) GetAllProducts(ctx context.Context) ([]entities.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]entities.Product(nil), r.products...), nil
}
