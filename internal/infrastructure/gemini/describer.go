package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"skin-vision-bot/internal/domain/entity"
	"skin-vision-bot/internal/domain/port"
)

// DefaultModel модель Gemini по умолчанию
const DefaultModel = "gemini-2.5-flash"

// ErrNotConfigured ключ Gemini не задан.
var ErrNotConfigured = errors.New("gemini api key is not configured")

// Generator отправляет промпт в модель и возвращает текст ответа
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Describer генерирует заключение по найденным поражениям
type Describer struct {
	gen    Generator
	retry  RetryPolicy
	logger *zap.Logger
}

// NewDescriber создаёт описатель поверх произвольного генератора
func NewDescriber(gen Generator, retry RetryPolicy, logger *zap.Logger) *Describer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Describer{gen: gen, retry: retry, logger: logger}
}

// Describe формирует промпт и запрашивает заключение с ограниченным повтором
func (d *Describer) Describe(ctx context.Context, detections []entity.Detection) (*entity.Insight, error) {
	if d.gen == nil {
		return nil, ErrNotConfigured
	}
	prompt := buildPrompt(detections)

	attempt := 0
	text, err := d.retry.do(ctx, func() (string, error) {
		attempt++
		if attempt > 1 {
			d.logger.Info("retrying insight generation", zap.Int("attempt", attempt))
		}
		text, err := d.gen.Generate(ctx, prompt)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", ErrEmptyInsight
		}
		return text, nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate insight: %w", err)
	}
	return &entity.Insight{Text: text}, nil
}

// GenAIGenerator вызывает Gemini через google.golang.org/genai
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAIGenerator создаёт генератор; пустой ключ даёт ErrNotConfigured
func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model}, nil
}

// Generate отправляет один текстовый промпт
func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

var _ port.InsightGenerator = (*Describer)(nil)
