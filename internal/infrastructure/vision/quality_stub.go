//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"
)

// Enabled сообщает, собран ли пакет с OpenCV.
const Enabled = false

// Check возвращает ошибку, если сборка без тега gocv.
func (g *QualityGate) Check(ctx context.Context, imageData []byte) error {
	_ = ctx
	_ = imageData
	return errors.New("gocv build tag is not enabled")
}
