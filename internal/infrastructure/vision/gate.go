package vision

import (
	"errors"

	"skin-vision-bot/internal/domain/port"
)

// ErrPoorQuality снимок непригоден для анализа.
var ErrPoorQuality = errors.New("photo quality is too low")

// QualityGate пороги проверки снимка кожи перед детекцией
type QualityGate struct {
	MinImageSide          int
	MinSharpnessEdgeRatio float64
	MaxOverexposedRatio   float64
	MaxUnderexposedRatio  float64
	MaxGlareRatio         float64
}

// NewQualityGate создаёт проверку с порогами для крупных планов кожи.
func NewQualityGate() *QualityGate {
	return &QualityGate{
		MinImageSide:          320,
		MinSharpnessEdgeRatio: 0.004,
		MaxOverexposedRatio:   0.35,
		MaxUnderexposedRatio:  0.45,
		MaxGlareRatio:         0.12,
	}
}

var _ port.QualityGate = (*QualityGate)(nil)
