package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/domain/repositories"
)

// OrderRepository provides in-memory purchase order storage
type OrderRepository struct {
	orders   []entities.Order
	ordersID map[string]int
	mu       sync.RWMutex
}

// NewOrderRepository creates a new in-memory order repository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders:   []entities.Order{},
		ordersID: make(map[string]int),
	}
}

// Verify interface compliance
var _ repositories.OrderRepository = (*OrderRepository)(nil)

// LoadOrders loads orders; an order with an existing id replaces the stored one
func (r *OrderRepository) LoadOrders(ctx context.Context, orders []entities.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, order := range orders {
		if index, exists := r.ordersID[order.ID]; exists {
			r.orders[index] = order
			continue
		}
		r.ordersID[order.ID] = len(r.orders)
		r.orders = append(r.orders, order)
	}
	return nil
}

// GetOrders returns all orders regardless of status
func (r *OrderRepository) GetOrders(ctx context.Context) ([]entities.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]entities.Order(nil), r.orders...), nil
}

// GetOrder returns one order by id
func (r *OrderRepository) GetOrder(ctx context.Context, id string) (*entities.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.ordersID[id]
	if !exists {
		return nil, fmt.Errorf("order not found: %s", id)
	}
	order := r.orders[index]
	return &order, nil
}

// UpdateOrderStatus changes the status of a stored order
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id string, status entities.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index, exists := r.ordersID[id]
	if !exists {
		return fmt.Errorf("order not found: %s", id)
	}
	r.orders[index].Status = status
	return nil
}
