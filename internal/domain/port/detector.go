package port

import (
	"context"

	"skin-vision-bot/internal/domain/entity"
)

// Detector интерфейс внешнего детектора поражений
type Detector interface {
	// Detect отправляет снимок в сервис и возвращает рамки в пикселях исходника
	Detect(ctx context.Context, imageData []byte) (*entity.AnalysisResult, error)
}

// Classifier интерфейс классификатора всего снимка
type Classifier interface {
	// Classify возвращает наиболее вероятный класс снимка
	Classify(ctx context.Context, imageData []byte) (*entity.Classification, error)
}
