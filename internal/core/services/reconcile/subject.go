package reconcile

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
)

// StateSubject manages state observers and notifies them in publish order.
type StateSubject struct {
	observers map[string]ports.StateObserver
	order     []string
	mu        sync.RWMutex
}

// NewStateSubject creates a new subject.
func NewStateSubject() *StateSubject {
	return &StateSubject{
		observers: make(map[string]ports.StateObserver),
	}
}

// Subscribe registers an observer and returns its subscription id.
func (s *StateSubject) Subscribe(observer ports.StateObserver) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	s.observers[id] = observer
	s.order = append(s.order, id)
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (s *StateSubject) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.observers[id]; !ok {
		return
	}
	delete(s.observers, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Notify delivers state to every observer synchronously so that observers see
// versions in increasing order.
func (s *StateSubject) Notify(ctx context.Context, state domain.ViewState) {
	s.mu.RLock()
	observers := make([]ports.StateObserver, 0, len(s.order))
	for _, id := range s.order {
		observers = append(observers, s.observers[id])
	}
	s.mu.RUnlock()

	for _, obs := range observers {
		obs.OnStateChanged(ctx, state)
	}
}

// ObserverFunc adapts a function to ports.StateObserver.
type ObserverFunc func(ctx context.Context, state domain.ViewState)

// OnStateChanged calls f.
func (f ObserverFunc) OnStateChanged(ctx context.Context, state domain.ViewState) {
	f(ctx, state)
}
