package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"skin-vision-bot/config"
	telegram "skin-vision-bot/internal/api"
	app "skin-vision-bot/internal/application"
	"skin-vision-bot/internal/container"
	"skin-vision-bot/internal/domain/port"
	"skin-vision-bot/internal/infrastructure/gemini"
	"skin-vision-bot/internal/infrastructure/roboflow"
	"skin-vision-bot/internal/infrastructure/storage"
	"skin-vision-bot/internal/infrastructure/vision"
	"skin-vision-bot/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", zap.Error(err))
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
	}

	// Хранилище пользователей
	userRepo := storage.NewMemoryUserRepository(cfg.DefaultThreshold)

	// Детектор и классификатор
	rf := roboflow.NewClient(roboflow.Options{
		APIKey:        cfg.RoboflowAPIKey,
		DetectModel:   cfg.RoboflowModel,
		ClassifyModel: cfg.RoboflowClassifyModel,
		DetectURL:     cfg.RoboflowDetectURL,
		ClassifyURL:   cfg.RoboflowClassifyURL,
		Confidence:    cfg.RoboflowConfidence,
		Timeout:       cfg.RoboflowTimeout,
		Logger:        logger.Named("roboflow"),
	})
	var classifier port.Classifier
	if cfg.RoboflowClassifyModel != "" {
		classifier = rf
	}

	// Заключения
	var insights port.InsightGenerator
	gen, err := gemini.NewGenAIGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		logger.Warn("GEMINI_API_KEY is not set, insights disabled")
	case err != nil:
		logger.Fatal("create gemini client", zap.Error(err))
	default:
		retry := gemini.RetryPolicy{MaxRetries: gemini.DefaultRetryPolicy.MaxRetries, Delay: cfg.InsightRetryDelay}
		insights = gemini.NewDescriber(gen, retry, logger.Named("gemini"))
	}

	// Проверка качества снимка доступна только со сборкой -tags gocv
	var gate port.QualityGate
	if vision.Enabled {
		gate = vision.NewQualityGate()
	}

	appContainer, err := container.New(container.Deps{
		Users:      userRepo,
		Detector:   rf,
		Classifier: classifier,
		Insights:   insights,
		Gate:       gate,
		Metrics:    m,
		Logger:     logger,
	}, app.AnalysisOptions{
		DisplayWidth:     cfg.DisplayWidth,
		SessionCacheSize: cfg.SessionCacheSize,
	})
	if err != nil {
		logger.Fatal("build container", zap.Error(err))
	}

	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, logger.Named("bot"))
	if err != nil {
		logger.Fatal("create bot", zap.Error(err))
	}

	logger.Info("bot is running")
	if err := bot.Run(ctx); err != nil {
		logger.Fatal("bot error", zap.Error(err))
	}
	logger.Info("bot stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
