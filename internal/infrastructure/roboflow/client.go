package roboflow

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"skin-vision-bot/internal/domain/entity"
	"skin-vision-bot/internal/domain/port"
)

const (
	DefaultDetectURL   = "https://detect.roboflow.com"
	DefaultClassifyURL = "https://classify.roboflow.com"
	DefaultTimeout     = 15 * time.Second
)

// ErrTimeout сервис не ответил за отведённое время.
var ErrTimeout = errors.New("request timed out")

// Options параметры клиента Roboflow
type Options struct {
	APIKey        string
	DetectModel   string // например "acne-away-v1/2"
	ClassifyModel string // пусто, если классификация не нужна
	DetectURL     string
	ClassifyURL   string
	Confidence    int // минимальная уверенность на стороне сервиса, в процентах
	Timeout       time.Duration
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// Client ходит в API детекции и классификации Roboflow
type Client struct {
	opts   Options
	http   *http.Client
	logger *zap.Logger
}

// NewClient создаёт клиента с заполненными значениями по умолчанию
func NewClient(opts Options) *Client {
	if opts.DetectURL == "" {
		opts.DetectURL = DefaultDetectURL
	}
	if opts.ClassifyURL == "" {
		opts.ClassifyURL = DefaultClassifyURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{opts: opts, http: hc, logger: logger}
}

// Detect отправляет снимок в модель детекции и нормализует ответ
func (c *Client) Detect(ctx context.Context, imageData []byte) (*entity.AnalysisResult, error) {
	q := url.Values{}
	q.Set("api_key", c.opts.APIKey)
	if c.opts.Confidence > 0 {
		q.Set("confidence", strconv.Itoa(c.opts.Confidence))
	}
	body, err := c.post(ctx, c.opts.DetectURL, c.opts.DetectModel, q, imageData)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return nil, fmt.Errorf("detection: %w", err)
		}
		return nil, fmt.Errorf("detection failed, check the API key and model id: %w", err)
	}

	preds, err := NormalizePredictions(body)
	if err != nil {
		return nil, err
	}
	for _, rerr := range preds.Rejected {
		c.logger.Warn("skipping unrecognized prediction", zap.Error(rerr))
	}
	dims := preds.Image
	if dims.Width <= 0 || dims.Height <= 0 {
		if dims, err = probeDimensions(imageData); err != nil {
			return nil, fmt.Errorf("read image dimensions: %w", err)
		}
	}

	return &entity.AnalysisResult{
		Image:       imageData,
		ImageWidth:  dims.Width,
		ImageHeight: dims.Height,
		Detections:  preds.Detections,
		Rejected:    len(preds.Rejected),
	}, nil
}

// Classify отправляет снимок в модель классификации
func (c *Client) Classify(ctx context.Context, imageData []byte) (*entity.Classification, error) {
	q := url.Values{}
	q.Set("api_key", c.opts.APIKey)
	body, err := c.post(ctx, c.opts.ClassifyURL, c.opts.ClassifyModel, q, imageData)
	if err != nil {
		return nil, fmt.Errorf("classification: %w", err)
	}

	var resp struct {
		Top         string  `json:"top"`
		Confidence  float64 `json:"confidence"`
		Predictions any     `json:"predictions"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode classification: %w", err)
	}

	return &entity.Classification{
		Top:        resp.Top,
		Confidence: resp.Confidence,
		Classes:    classScores(resp.Predictions),
	}, nil
}

// post кодирует снимок в base64 и отправляет его как тело формы
func (c *Client) post(ctx context.Context, base, model string, q url.Values, imageData []byte) ([]byte, error) {
	endpoint := strings.TrimRight(base, "/") + "/" + strings.Trim(model, "/") + "?" + q.Encode()
	payload := base64.StdEncoding.EncodeToString(imageData)

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: providerMessage(body)}
	}
	return body, nil
}

// APIError ответ сервиса с кодом не 2xx
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("roboflow: status %d", e.Status)
	}
	return fmt.Sprintf("roboflow: status %d: %s", e.Status, e.Message)
}

func providerMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&e); err != nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if m, ok := e.Error.(map[string]any); ok {
		return cast.ToString(m["message"])
	}
	return cast.ToString(e.Error)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// classScores принимает и список, и словарь класс -> {confidence}
func classScores(raw any) []entity.ClassScore {
	var out []entity.ClassScore
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, entity.ClassScore{
				Class:      cast.ToString(m["class"]),
				Confidence: cast.ToFloat64(m["confidence"]),
			})
		}
	case map[string]any:
		for class, item := range v {
			m, _ := item.(map[string]any)
			out = append(out, entity.ClassScore{Class: class, Confidence: cast.ToFloat64(m["confidence"])})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	}
	return out
}

var (
	_ port.Detector   = (*Client)(nil)
	_ port.Classifier = (*Client)(nil)
)
