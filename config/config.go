package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"go.uber.org/multierr"
)

// Config настройки приложения. Создаётся в main и передаётся явно.
type Config struct {
	TelegramToken string

	RoboflowAPIKey        string
	RoboflowModel         string
	RoboflowClassifyModel string
	RoboflowDetectURL     string
	RoboflowClassifyURL   string
	RoboflowConfidence    int // минимальная уверенность на стороне детектора, %
	RoboflowTimeout       time.Duration

	GeminiAPIKey      string
	GeminiModel       string
	InsightRetryDelay time.Duration

	DefaultThreshold int // порог отрисовки для новых пользователей, %
	DisplayWidth     int // ширина аннотированного снимка, px
	SessionCacheSize int

	MetricsAddr string
	LogLevel    string
}

// Default возвращает настройки по умолчанию
func Default() *Config {
	return &Config{
		RoboflowModel:       "acne-away-v1/2",
		RoboflowDetectURL:   "https://detect.roboflow.com",
		RoboflowClassifyURL: "https://classify.roboflow.com",
		RoboflowConfidence:  10,
		RoboflowTimeout:     15 * time.Second,
		GeminiModel:         "gemini-2.5-flash",
		InsightRetryDelay:   time.Second,
		DefaultThreshold:    40,
		DisplayWidth:        800,
		SessionCacheSize:    256,
		LogLevel:            "info",
	}
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup собирает конфигурацию из произвольного источника переменных
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	var errs error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := cast.ToIntE(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := parseDuration(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("TELEGRAM_TOKEN", &cfg.TelegramToken)
	str("ROBOFLOW_API_KEY", &cfg.RoboflowAPIKey)
	str("ROBOFLOW_MODEL", &cfg.RoboflowModel)
	str("ROBOFLOW_CLASSIFY_MODEL", &cfg.RoboflowClassifyModel)
	str("ROBOFLOW_DETECT_URL", &cfg.RoboflowDetectURL)
	str("ROBOFLOW_CLASSIFY_URL", &cfg.RoboflowClassifyURL)
	num("ROBOFLOW_CONFIDENCE", &cfg.RoboflowConfidence)
	dur("ROBOFLOW_TIMEOUT", &cfg.RoboflowTimeout)
	str("GEMINI_API_KEY", &cfg.GeminiAPIKey)
	str("GEMINI_MODEL", &cfg.GeminiModel)
	dur("INSIGHT_RETRY_DELAY", &cfg.InsightRetryDelay)
	num("DEFAULT_THRESHOLD", &cfg.DefaultThreshold)
	num("DISPLAY_WIDTH", &cfg.DisplayWidth)
	num("SESSION_CACHE_SIZE", &cfg.SessionCacheSize)
	str("METRICS_ADDR", &cfg.MetricsAddr)
	str("LOG_LEVEL", &cfg.LogLevel)

	if errs != nil {
		return cfg, errs
	}
	return cfg, cfg.Validate()
}

// parseDuration понимает "15s", "1m30s" и число без единиц как секунды
func parseDuration(v string) (time.Duration, error) {
	if secs, err := cast.ToFloat64E(strings.TrimSpace(v)); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return cast.ToDurationE(v)
}

// Validate собирает все ошибки конфигурации разом
func (c *Config) Validate() error {
	var errs error
	if c.TelegramToken == "" {
		errs = multierr.Append(errs, errors.New("TELEGRAM_TOKEN is required"))
	}
	if c.RoboflowAPIKey == "" {
		errs = multierr.Append(errs, errors.New("ROBOFLOW_API_KEY is required"))
	}
	if c.RoboflowModel == "" {
		errs = multierr.Append(errs, errors.New("ROBOFLOW_MODEL is required"))
	}
	if c.RoboflowConfidence < 0 || c.RoboflowConfidence > 100 {
		errs = multierr.Append(errs, fmt.Errorf("ROBOFLOW_CONFIDENCE must be within 0..100, got %d", c.RoboflowConfidence))
	}
	if c.RoboflowTimeout <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("ROBOFLOW_TIMEOUT must be positive, got %s", c.RoboflowTimeout))
	}
	if c.InsightRetryDelay < 0 {
		errs = multierr.Append(errs, fmt.Errorf("INSIGHT_RETRY_DELAY must not be negative, got %s", c.InsightRetryDelay))
	}
	if c.DefaultThreshold < 0 || c.DefaultThreshold > 100 {
		errs = multierr.Append(errs, fmt.Errorf("DEFAULT_THRESHOLD must be within 0..100, got %d", c.DefaultThreshold))
	}
	if c.DisplayWidth <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("DISPLAY_WIDTH must be positive, got %d", c.DisplayWidth))
	}
	if c.SessionCacheSize <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("SESSION_CACHE_SIZE must be positive, got %d", c.SessionCacheSize))
	}
	return errs
}
