package repositories

import (
	"context"

	"github.com/farmops/inputplan/pkg/domain/entities"
)

// OrderSource provides purchase and bid commitments in every status.
// Callers filter to committed statuses before reconciliation.
type OrderSource interface {
	GetOrders(ctx context.Context) ([]entities.Order, error)
}

// OrderRepository is an OrderSource with write access
type OrderRepository interface {
	OrderSource
	GetOrder(ctx context.Context, id string) (*entities.Order, error)
	LoadOrders(ctx context.Context, orders []entities.Order) error
}
