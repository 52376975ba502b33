package app

import (
	"context"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/port"
)

type SubscriberService struct {
	repo port.SubscriberRepository
}

func NewSubscriberService(repo port.SubscriberRepository) *SubscriberService {
	return &SubscriberService{repo: repo}
}

func (s *SubscriberService) Get(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *SubscriberService) SetState(ctx context.Context, userID, chatID int64, state entity.SubscriberState) (*entity.Subscriber, error) {
	subscriber, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	subscriber.SetState(state)
	if err := s.repo.Save(ctx, subscriber); err != nil {
		return nil, err
	}

	return subscriber, nil
}

func (s *SubscriberService) BeginFraming(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error) {
	return s.SetState(ctx, userID, chatID, entity.StateFraming)
}

// Cancel returns the chat to idle.
func (s *SubscriberService) Cancel(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error) {
	subscriber, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateState(ctx, userID, entity.StateIdle); err != nil {
		return nil, err
	}
	subscriber.SetState(entity.StateIdle)

	return subscriber, nil
}

// Framing returns the chats that receive live guidance.
func (s *SubscriberService) Framing(ctx context.Context) ([]*entity.Subscriber, error) {
	return s.repo.ListByState(ctx, entity.StateFraming)
}
