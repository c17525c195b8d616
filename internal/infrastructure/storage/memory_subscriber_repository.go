package storage

import (
	"context"
	"sort"
	"sync"

	"screengpt/internal/domain/entity"
	"screengpt/internal/domain/port"
)

// MemorySubscriberRepository in-memory хранилище подписчиков, ключ по ChatID
type MemorySubscriberRepository struct {
	mu   sync.RWMutex
	subs map[int64]*entity.Subscriber
}

func NewMemorySubscriberRepository() *MemorySubscriberRepository {
	return &MemorySubscriberRepository{
		subs: make(map[int64]*entity.Subscriber),
	}
}

// Get возвращает подписчика, создаёт нового если не найден
func (r *MemorySubscriberRepository) Get(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sub, ok := r.subs[chatID]; ok {
		cp := *sub
		return &cp, nil
	}

	sub := entity.NewSubscriber(userID, chatID)
	r.subs[chatID] = sub
	cp := *sub
	return &cp, nil
}

func (r *MemorySubscriberRepository) Save(ctx context.Context, sub *entity.Subscriber) error {
	cp := *sub

	r.mu.Lock()
	r.subs[sub.ChatID] = &cp
	r.mu.Unlock()

	return nil
}

// List возвращает подписчиков, упорядоченных по ChatID
func (r *MemorySubscriberRepository) List(ctx context.Context) ([]entity.Subscriber, error) {
	r.mu.RLock()
	out := make([]entity.Subscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, *sub)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out, nil
}

// Проверка реализации интерфейса
var _ port.SubscriberRepository = (*MemorySubscriberRepository)(nil)
