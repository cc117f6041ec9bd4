package readiness

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/domain/repositories"
	"github.com/farmops/inputplan/pkg/domain/services"
	"github.com/farmops/inputplan/pkg/infrastructure/logger"
)

// Input is one snapshot of everything a readiness run reads
type Input struct {
	Products  []entities.Product
	PlanUsage []entities.PlanUsageItem
	Inventory []entities.InventoryRow
	Orders    []entities.Order
}

// Service loads plan, inventory and order data and reconciles readiness
type Service struct {
	plans     repositories.PlanDemandSource
	products  repositories.ProductRepository
	inventory repositories.InventorySource
	orders    repositories.OrderSource
	committed []entities.OrderStatus
}

type Option func(*Service)

// WithCommittedStatuses sets which order statuses count toward supply
func WithCommittedStatuses(statuses ...entities.OrderStatus) Option {
	return func(s *Service) {
		if len(statuses) > 0 {
			s.committed = append([]entities.OrderStatus(nil), statuses...)
		}
	}
}

// NewService creates a readiness service. products may be nil, in which case
// labels fall back to product ids.
func NewService(
	plans repositories.PlanDemandSource,
	products repositories.ProductRepository,
	inventory repositories.InventorySource,
	orders repositories.OrderSource,
	opts ...Option,
) *Service {
	s := &Service{
		plans:     plans,
		products:  products,
		inventory: inventory,
		orders:    orders,
		committed: entities.DefaultCommittedStatuses,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CommittedStatuses returns the statuses this service treats as supply
func (s *Service) CommittedStatuses() []entities.OrderStatus {
	return append([]entities.OrderStatus(nil), s.committed...)
}

// Run loads the current snapshot from the collaborators and reconciles it
func (s *Service) Run(ctx context.Context) (entities.ReadinessResult, error) {
	ctx, span := logger.StartSpan(ctx, "readiness.Run")
	defer span.End()

	in, err := s.load(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "failed to load readiness input", err)
		return entities.ReadinessResult{}, err
	}
	return s.Compute(ctx, in), nil
}

func (s *Service) load(ctx context.Context) (Input, error) {
	var in Input
	var err error

	if in.PlanUsage, err = s.plans.GetPlanUsage(ctx); err != nil {
		return Input{}, fmt.Errorf("failed to load plan usage: %w", err)
	}
	if s.products != nil {
		if in.Products, err = s.products.GetAllProducts(ctx); err != nil {
			return Input{}, fmt.Errorf("failed to load products: %w", err)
		}
	}
	if in.Inventory, err = s.inventory.GetInventoryRows(ctx); err != nil {
		return Input{}, fmt.Errorf("failed to load inventory: %w", err)
	}
	if in.Orders, err = s.orders.GetOrders(ctx); err != nil {
		return Input{}, fmt.Errorf("failed to load orders: %w", err)
	}
	return in, nil
}

// Compute reconciles an in-memory snapshot. Orders are flattened and
// filtered to the committed statuses before the engine sees them.
func (s *Service) Compute(ctx context.Context, in Input) entities.ReadinessResult {
	ctx, span := logger.StartSpan(ctx, "readiness.Compute")
	defer span.End()

	demand := services.NormalizeDemand(in.PlanUsage, services.NewCatalog(in.Products))
	lines := services.FilterCommitted(services.PurchaseOrderAdapter.Flatten(in.Orders), s.committed...)
	result := services.ComputeReadiness(demand, in.Inventory, lines)

	span.SetAttributes(
		attribute.Int("readiness.total", result.TotalCount()),
		attribute.Int("readiness.blocking", result.BlockingCount()),
	)
	logger.Info(ctx, "readiness computed",
		"products", result.TotalCount(),
		"ready", result.ReadyCount(),
		"on_order", result.OnOrderCount(),
		"blocking", result.BlockingCount(),
		"committed_order_lines", len(lines))

	for _, item := range result.ByStatus(entities.Blocking) {
		logger.Debug(ctx, "product blocking",
			"product_id", item.ProductID,
			"short_qty", item.ShortQty.String(),
			"unit", item.PlannedUnit)
	}
	return result
}
