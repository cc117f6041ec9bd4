package repositories

import (
	"context"

	"github.com/farmops/inputplan/pkg/domain/entities"
)

// PriceHistoryStore persists landed costs written by invoice settlement
type PriceHistoryStore interface {
	RecordPrices(ctx context.Context, entries []entities.PriceHistoryEntry) error
	GetPriceHistory(ctx context.Context, productID entities.ProductID) ([]entities.PriceHistoryEntry, error)
}
