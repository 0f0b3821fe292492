package port

import (
	"context"

	"skin-vision-bot/internal/domain/entity"
)

// InsightGenerator интерфейс генератора заключений
type InsightGenerator interface {
	// Describe генерирует текстовое заключение по найденным поражениям
	Describe(ctx context.Context, detections []entity.Detection) (*entity.Insight, error)
}
