package app

import (
	"context"

	"screengpt/internal/domain/entity"
	"screengpt/internal/domain/port"
)

// SubscriberService управляет тем, какие чаты получают результаты
type SubscriberService struct {
	repo port.SubscriberRepository
}

func NewSubscriberService(repo port.SubscriberRepository) *SubscriberService {
	return &SubscriberService{repo: repo}
}

func (s *SubscriberService) SetState(ctx context.Context, userID, chatID int64, state entity.SubscriberState) (*entity.Subscriber, error) {
	sub, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	sub.SetState(state)
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}

	return sub, nil
}

func (s *SubscriberService) Subscribe(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error) {
	return s.SetState(ctx, userID, chatID, entity.StateSubscribed)
}

func (s *SubscriberService) Unsubscribe(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error) {
	return s.SetState(ctx, userID, chatID, entity.StateUnsubscribed)
}

// ActiveChats возвращает ID чатов с включённой рассылкой
func (s *SubscriberService) ActiveChats(ctx context.Context) ([]int64, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	chats := make([]int64, 0, len(subs))
	for _, sub := range subs {
		if sub.Active() {
			chats = append(chats, sub.ChatID)
		}
	}
	return chats, nil
}
