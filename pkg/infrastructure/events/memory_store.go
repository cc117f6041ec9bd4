package events

import (
	"context"
	"sync"

	"github.com/farmops/inputplan/pkg/infrastructure/logger"
)

type subscriber struct {
	id      int
	handler EventHandler
}

type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]subscriber
	mutex       sync.RWMutex
	nextID      int
	allEvents   []Event
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]subscriber),
	}
}

// AppendEvent stores event under streamID with the next stream version and
// delivers it to matching subscribers before returning. Handler errors are
// logged and never fail the append.
func (s *InMemoryEventStore) AppendEvent(ctx context.Context, streamID string, event Event) error {
	s.mutex.Lock()
	versioned := BaseEvent{
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}
	s.streams[streamID] = append(s.streams[streamID], versioned)
	s.allEvents = append(s.allEvents, versioned)
	handlers := append([]subscriber(nil), s.subscribers[versioned.EventType]...)
	s.mutex.Unlock()

	for _, sub := range handlers {
		if !sub.handler.CanHandle(versioned.EventType) {
			continue
		}
		if err := sub.handler.Handle(ctx, versioned); err != nil {
			logger.ErrorWithErr(ctx, "event handler failed", err,
				"event_type", versioned.EventType,
				"stream", streamID)
		}
	}
	return nil
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events := s.streams[streamID]
	if fromVersion < 1 {
		fromVersion = 1
	}
	if fromVersion > len(events) {
		return []Event{}, nil
	}
	return append([]Event(nil), events[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}
	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}
	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) (Subscription, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextID++
	sub := subscriber{id: s.nextID, handler: handler}
	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], sub)
	}
	return &subscription{store: s, id: sub.id}, nil
}

type subscription struct {
	store *InMemoryEventStore
	id    int
	once  sync.Once
}

func (sub *subscription) Unsubscribe() {
	sub.once.Do(func() {
		s := sub.store
		s.mutex.Lock()
		defer s.mutex.Unlock()

		for eventType, subs := range s.subscribers {
			kept := subs[:0:0]
			for _, existing := range subs {
				if existing.id != sub.id {
					kept = append(kept, existing)
				}
			}
			s.subscribers[eventType] = kept
		}
	})
}
