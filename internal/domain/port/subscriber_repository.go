package port

import (
	"context"

	"frame-guide/internal/domain/entity"
)

// SubscriberRepository stores bot chats
type SubscriberRepository interface {
	// Get returns the subscriber, creating it if missing
	Get(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error)

	// Save persists the subscriber state
	Save(ctx context.Context, subscriber *entity.Subscriber) error

	// UpdateState changes the state of a known subscriber
	UpdateState(ctx context.Context, userID int64, state entity.SubscriberState) error

	// ListByState returns all subscribers in the given state
	ListByState(ctx context.Context, state entity.SubscriberState) ([]*entity.Subscriber, error)
}
