package port

import (
	"context"

	"screengpt/internal/domain/entity"
)

// SubscriberRepository хранилище чатов, получающих результаты
type SubscriberRepository interface {
	// Get возвращает подписчика по ID чата, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.Subscriber, error)

	Save(ctx context.Context, sub *entity.Subscriber) error

	// List возвращает копию всех известных подписчиков
	List(ctx context.Context) ([]entity.Subscriber, error)
}
