package port

import (
	"context"

	"screengpt/internal/domain/entity"
)

// ImageAnalyzer интерфейс анализатора снимков
type ImageAnalyzer interface {
	// Analyze отправляет снимок модели и возвращает её ответ
	Analyze(ctx context.Context, path entity.CaptureArtifact) (entity.AnalysisOutput, error)
}

// PreparedImage изображение, готовое к отправке модели
type PreparedImage struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
}

// ImagePreparer интерфейс подготовки изображения перед отправкой
type ImagePreparer interface {
	// Prepare проверяет снимок и при необходимости уменьшает его
	Prepare(data []byte) (*PreparedImage, error)
}
