package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"TELEGRAM_TOKEN":   "tg",
		"ROBOFLOW_API_KEY": "rf",
	}))
	require.NoError(t, err)
	require.Equal(t, "acne-away-v1/2", cfg.RoboflowModel)
	require.Equal(t, 40, cfg.DefaultThreshold)
	require.Equal(t, 800, cfg.DisplayWidth)
	require.Equal(t, 15*time.Second, cfg.RoboflowTimeout)
	require.Empty(t, cfg.GeminiAPIKey)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"TELEGRAM_TOKEN":      "tg",
		"ROBOFLOW_API_KEY":    "rf",
		"DISPLAY_WIDTH":       "1024",
		"DEFAULT_THRESHOLD":   "55",
		"INSIGHT_RETRY_DELAY": "250ms",
		"GEMINI_MODEL":        "gemini-x",
	}))
	require.NoError(t, err)
	require.Equal(t, 1024, cfg.DisplayWidth)
	require.Equal(t, 55, cfg.DefaultThreshold)
	require.Equal(t, 250*time.Millisecond, cfg.InsightRetryDelay)
	require.Equal(t, "gemini-x", cfg.GeminiModel)
}

func TestFromLookup_BadNumber(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{
		"TELEGRAM_TOKEN":   "tg",
		"ROBOFLOW_API_KEY": "rf",
		"DISPLAY_WIDTH":    "wide",
	}))
	require.ErrorContains(t, err, "DISPLAY_WIDTH")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.DisplayWidth = 0
	cfg.DefaultThreshold = 120

	err := cfg.Validate()
	require.ErrorContains(t, err, "TELEGRAM_TOKEN is required")
	require.ErrorContains(t, err, "ROBOFLOW_API_KEY is required")
	require.ErrorContains(t, err, "DISPLAY_WIDTH must be positive")
	require.ErrorContains(t, err, "DEFAULT_THRESHOLD must be within")
}

func TestFromLookup_DurationsWithoutUnitAreSeconds(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"TELEGRAM_TOKEN":      "tg",
		"ROBOFLOW_API_KEY":    "rf",
		"ROBOFLOW_TIMEOUT":    "15",
		"INSIGHT_RETRY_DELAY": "0.5",
	}))
	require.NoError(t, err)
	require.Equal(t, 15*time.Second, cfg.RoboflowTimeout)
	require.Equal(t, 500*time.Millisecond, cfg.InsightRetryDelay)
}

func TestFromLookup_BadDurations(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{
		"TELEGRAM_TOKEN":      "tg",
		"ROBOFLOW_API_KEY":    "rf",
		"ROBOFLOW_TIMEOUT":    "0",
		"INSIGHT_RETRY_DELAY": "-1s",
	}))
	require.ErrorContains(t, err, "ROBOFLOW_TIMEOUT must be positive")
	require.ErrorContains(t, err, "INSIGHT_RETRY_DELAY must not be negative")

	_, err = FromLookup(lookupFrom(map[string]string{
		"TELEGRAM_TOKEN":   "tg",
		"ROBOFLOW_API_KEY": "rf",
		"ROBOFLOW_TIMEOUT": "soon",
	}))
	require.ErrorContains(t, err, "ROBOFLOW_TIMEOUT")
}
