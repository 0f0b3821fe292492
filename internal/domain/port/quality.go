package port

import "context"

// QualityGate проверяет пригодность снимка до отправки в детектор
type QualityGate interface {
	Check(ctx context.Context, imageData []byte) error
}
