package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrEmptyInsight модель вернула пустой текст.
var ErrEmptyInsight = errors.New("empty insight text")

// Известные признаки временного сбоя, после которых есть смысл повторить запрос.
var retrySentinels = []string{"429", "500", "503", "UNAVAILABLE", "RESOURCE_EXHAUSTED", "overloaded"}

// RetryPolicy не более MaxRetries повторов с фиксированной паузой.
type RetryPolicy struct {
	MaxRetries uint64
	Delay      time.Duration
}

// DefaultRetryPolicy один повтор через секунду.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 1, Delay: time.Second}

func retryable(err error) bool {
	if errors.Is(err, ErrEmptyInsight) {
		return true
	}
	msg := err.Error()
	for _, s := range retrySentinels {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// do выполняет op, повторяя его только на известных временных сбоях.
func (p RetryPolicy) do(ctx context.Context, op func() (string, error)) (string, error) {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), p.MaxRetries), ctx)
	return backoff.RetryWithData(func() (string, error) {
		text, err := op()
		if err != nil && !retryable(err) {
			return "", backoff.Permanent(err)
		}
		return text, err
	}, b)
}
