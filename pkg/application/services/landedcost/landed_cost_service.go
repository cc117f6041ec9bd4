package landedcost

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/domain/repositories"
	"github.com/farmops/inputplan/pkg/domain/services"
	"github.com/farmops/inputplan/pkg/infrastructure/events"
	"github.com/farmops/inputplan/pkg/infrastructure/logger"
)

// Settlement is the outcome of settling one invoice
type Settlement struct {
	Invoice entities.Invoice
	Lines   []entities.FreightAllocatedLine
	Entries []entities.PriceHistoryEntry
}

// Service allocates invoice charges and records landed costs
type Service struct {
	allocator  *services.FreightAllocator
	prices     repositories.PriceHistoryStore
	eventStore events.EventStore
	now        func() time.Time
}

type Option func(*Service)

// WithEventStore publishes freight.allocated and price.recorded events on settlement
func WithEventStore(store events.EventStore) Option {
	return func(s *Service) { s.eventStore = store }
}

// WithClock overrides the time used for entries on undated invoices
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a landed-cost service. A nil weight table uses the defaults.
func NewService(weights entities.WeightTable, prices repositories.PriceHistoryStore, opts ...Option) *Service {
	s := &Service{
		allocator: services.NewFreightAllocator(weights),
		prices:    prices,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allocate prorates totalCharges across lines without recording anything
func (s *Service) Allocate(ctx context.Context, lines []entities.FreightLineInput, totalCharges decimal.Decimal) []entities.FreightAllocatedLine {
	_, span := logger.StartSpan(ctx, "landedcost.Allocate")
	defer span.End()

	return s.allocator.Allocate(lines, totalCharges)
}

// Settle validates the invoice, allocates its charges and records a price
// history entry for every line with a positive quantity
func (s *Service) Settle(ctx context.Context, invoice entities.Invoice) (*Settlement, error) {
	ctx, span := logger.StartSpan(ctx, "landedcost.Settle")
	defer span.End()
	span.SetAttributes(attribute.String("invoice.id", invoice.ID))

	if err := invoice.Validate(); err != nil {
		logger.Warn(ctx, "invoice rejected", "invoice_id", invoice.ID, "error", err)
		return nil, err
	}

	totalCharges := invoice.TotalCharges()
	lines := s.allocator.Allocate(invoice.Lines, totalCharges)

	recordedAt := invoice.InvoiceDate
	if recordedAt.IsZero() {
		recordedAt = s.now().UTC()
	}

	entries := make([]entities.PriceHistoryEntry, 0, len(lines))
	for _, line := range lines {
		if !line.Quantity.IsPositive() {
			continue
		}
		entries = append(entries, entities.PriceHistoryEntry{
			ProductID:      line.ProductID,
			VendorName:     invoice.VendorName,
			InvoiceID:      invoice.ID,
			Unit:           line.Unit,
			UnitPrice:      line.UnitPrice,
			LandedUnitCost: line.LandedUnitCost,
			RecordedAt:     recordedAt,
		})
	}

	if s.prices != nil && len(entries) > 0 {
		if err := s.prices.RecordPrices(ctx, entries); err != nil {
			logger.ErrorWithErr(ctx, "failed to record price history", err, "invoice_id", invoice.ID)
			return nil, fmt.Errorf("failed to record price history for invoice %s: %w", invoice.ID, err)
		}
	}

	logger.Info(ctx, "invoice settled",
		"invoice_id", invoice.ID,
		"vendor", invoice.VendorName,
		"lines", len(lines),
		"total_charges", totalCharges.String(),
		"allocated", services.TotalAllocated(lines).String(),
		"price_entries", len(entries))

	settlement := &Settlement{Invoice: invoice, Lines: lines, Entries: entries}
	s.publish(ctx, settlement)
	return settlement, nil
}

// PriceHistory returns recorded landed costs for a product, oldest first
func (s *Service) PriceHistory(ctx context.Context, productID entities.ProductID) ([]entities.PriceHistoryEntry, error) {
	if s.prices == nil {
		return nil, nil
	}
	entries, err := s.prices.GetPriceHistory(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history for %s: %w", productID, err)
	}
	return entries, nil
}

func (s *Service) publish(ctx context.Context, settlement *Settlement) {
	if s.eventStore == nil {
		return
	}

	allocated := events.NewFreightAllocated(settlement.Invoice.ID, settlement.Invoice.TotalCharges(), settlement.Lines)
	if err := s.eventStore.AppendEvent(ctx, allocated.StreamID(), allocated); err != nil {
		logger.Warn(ctx, "failed to publish freight allocated event", "invoice_id", settlement.Invoice.ID, "error", err)
	}
	for _, entry := range settlement.Entries {
		recorded := events.NewPriceRecorded(entry)
		if err := s.eventStore.AppendEvent(ctx, recorded.StreamID(), recorded); err != nil {
			logger.Warn(ctx, "failed to publish price recorded event", "product_id", entry.ProductID, "error", err)
		}
	}
}
