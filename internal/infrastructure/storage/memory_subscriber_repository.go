package storage

import (
	"context"
	"sort"
	"sync"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/port"
)

// MemorySubscriberRepository is an in-memory subscriber store
type MemorySubscriberRepository struct {
	mu          sync.RWMutex
	subscribers map[int64]*entity.Subscriber
}

// NewMemorySubscriberRepository creates an empty store
func NewMemorySubscriberRepository() *MemorySubscriberRepository {
	return &MemorySubscriberRepository{
		subscribers: make(map[int64]*entity.Subscriber),
	}
}

// Get returns the subscriber by ID, creating a new one if missing
func (r *MemorySubscriberRepository) Get(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, exists := r.subscribers[userID]; exists {
		cp := *s
		return &cp, nil
	}

	s := entity.NewSubscriber(userID, chatID)
	r.subscribers[userID] = s
	cp := *s
	return &cp, nil
}

// Save stores the subscriber state
func (r *MemorySubscriberRepository) Save(ctx context.Context, subscriber *entity.Subscriber) error {
	cp := *subscriber

	r.mu.Lock()
	r.subscribers[subscriber.ID] = &cp
	r.mu.Unlock()

	return nil
}

// UpdateState changes the state of a known subscriber
func (r *MemorySubscriberRepository) UpdateState(ctx context.Context, userID int64, state entity.SubscriberState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, exists := r.subscribers[userID]; exists {
		s.SetState(state)
	}

	return nil
}

// ListByState returns copies of all subscribers in state, ordered by ID
func (r *MemorySubscriberRepository) ListByState(ctx context.Context, state entity.SubscriberState) ([]*entity.Subscriber, error) {
	r.mu.RLock()
	out := make([]*entity.Subscriber, 0, len(r.subscribers))
	for _, s := range r.subscribers {
		if s.State == state {
			cp := *s
			out = append(out, &cp)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Interface check
var _ port.SubscriberRepository = (*MemorySubscriberRepository)(nil)
