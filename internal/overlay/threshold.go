package overlay

import (
	"math"

	"github.com/samber/lo"

	"skin-vision-bot/internal/domain/entity"
)

// ClampThreshold приводит порог к [0, 1]. NaN считается нулём.
func ClampThreshold(t float64) float64 {
	switch {
	case math.IsNaN(t), t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// ThresholdFromPercent переводит процент из интерфейса в долю.
func ThresholdFromPercent(percent int) float64 {
	return ClampThreshold(float64(percent) / 100)
}

// Visible оставляет рамки с уверенностью не ниже порога, сохраняя порядок.
func Visible(dets []entity.Detection, threshold float64) []entity.Detection {
	threshold = ClampThreshold(threshold)
	return lo.Filter(dets, func(d entity.Detection, _ int) bool {
		return d.Confidence >= threshold
	})
}
