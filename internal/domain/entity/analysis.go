package entity

import (
	"time"

	"github.com/samber/lo"
)

// Classification итог классификатора всего снимка.
type Classification struct {
	Top        string
	Confidence float64
	Classes    []ClassScore
}

// ClassScore уверенность классификатора для одного класса.
type ClassScore struct {
	Class      string
	Confidence float64
}

// AnalysisResult хранит итог анализа одного снимка.
// Новый результат целиком заменяет предыдущий.
type AnalysisResult struct {
	ID             string          // идентификатор анализа
	ImageID        string          // идентичность исходного изображения
	Image          []byte          // исходные байты снимка
	ImageWidth     int             // ширина исходного изображения
	ImageHeight    int             // высота исходного изображения
	Detections     []Detection     // рамки в порядке ответа сервиса
	Rejected       int             // записей ответа, отброшенных при разборе
	Classification *Classification // может быть nil
	CreatedAt      time.Time
}

// Stats сводка по найденным поражениям.
type Stats struct {
	TotalDetections int
	TypesFound      int
	AvgConfidence   float64
}

// ComputeStats считает сводку по полному (нефильтрованному) списку рамок.
func ComputeStats(dets []Detection) Stats {
	if len(dets) == 0 {
		return Stats{}
	}
	types := lo.Uniq(lo.Map(dets, func(d Detection, _ int) string { return d.Label }))
	total := lo.SumBy(dets, func(d Detection) float64 { return d.Confidence })
	return Stats{
		TotalDetections: len(dets),
		TypesFound:      len(types),
		AvgConfidence:   total / float64(len(dets)),
	}
}

// Insight текстовое заключение от ИИ в Markdown.
type Insight struct {
	Text string
}
