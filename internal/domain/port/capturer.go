package port

import (
	"context"

	"screengpt/internal/domain/entity"
)

// ScreenCapturer интерфейс захвата экрана
type ScreenCapturer interface {
	// Capture сохраняет снимок основного экрана и возвращает путь к файлу
	Capture(ctx context.Context) (entity.CaptureArtifact, error)
}
