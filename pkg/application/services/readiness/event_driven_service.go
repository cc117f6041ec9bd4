package readiness

import (
	"context"

	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/infrastructure/events"
	"github.com/farmops/inputplan/pkg/infrastructure/logger"
)

// EventDrivenService publishes a readiness.computed event per run and a
// product.blocking event per blocking product
type EventDrivenService struct {
	*Service
	eventStore events.EventStore
}

func NewEventDrivenService(service *Service, eventStore events.EventStore) *EventDrivenService {
	return &EventDrivenService{Service: service, eventStore: eventStore}
}

func (s *EventDrivenService) Run(ctx context.Context) (entities.ReadinessResult, error) {
	result, err := s.Service.Run(ctx)
	if err != nil {
		return result, err
	}
	s.publish(ctx, result)
	return result, nil
}

func (s *EventDrivenService) Compute(ctx context.Context, in Input) entities.ReadinessResult {
	result := s.Service.Compute(ctx, in)
	s.publish(ctx, result)
	return result
}

func (s *EventDrivenService) publish(ctx context.Context, result entities.ReadinessResult) {
	if err := s.eventStore.AppendEvent(ctx, events.ReadinessStream, events.NewReadinessComputed(result)); err != nil {
		logger.Warn(ctx, "failed to publish readiness computed event", "error", err)
	}

	for _, item := range result.ByStatus(entities.Blocking) {
		event := events.NewProductBlocking(item)
		if err := s.eventStore.AppendEvent(ctx, event.StreamID(), event); err != nil {
			logger.Warn(ctx, "failed to publish product blocking event", "product_id", item.ProductID, "error", err)
		}
	}
}
