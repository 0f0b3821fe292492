package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"skin-vision-bot/internal/domain/entity"
	"skin-vision-bot/internal/domain/port"
	"skin-vision-bot/internal/metrics"
	"skin-vision-bot/internal/overlay"
)

var (
	// ErrDetectorNotConfigured детектор не подключён.
	ErrDetectorNotConfigured = errors.New("detector is not configured")
	// ErrNoAnalysis у пользователя нет сохранённого анализа для перерисовки.
	ErrNoAnalysis = errors.New("no analysis to render")
)

// AnalysisOptions параметры сервиса анализа
type AnalysisOptions struct {
	DisplayWidth     int // ширина аннотированного снимка
	SessionCacheSize int // сколько пользователей держать в памяти
	JPEGQuality      int
	Decoder          overlay.DecodeFunc // nil означает overlay.Decode
}

// AnalysisOutput результат анализа или перерисовки.
type AnalysisOutput struct {
	Result           *entity.AnalysisResult
	Frame            *overlay.Frame // nil, если Superseded
	Annotated        []byte         // JPEG с рамками
	Stats            entity.Stats
	Visible          int // нарисовано рамок при текущем пороге
	ThresholdPercent int
	Insight          *entity.Insight // nil при перерисовке или ошибке
	InsightErr       error
	Superseded       bool // отрисовку вытеснил более новый снимок, заключение сохранено
}

// userAnalysis последний анализ пользователя и его сессия отрисовки.
type userAnalysis struct {
	mu      sync.Mutex
	result  *entity.AnalysisResult
	session *overlay.Session
}

func (u *userAnalysis) current() *entity.AnalysisResult {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.result
}

type AnalysisService struct {
	users      *UserService
	detector   port.Detector
	classifier port.Classifier
	insights   port.InsightGenerator
	gate       port.QualityGate
	renderer   *overlay.Renderer
	metrics    *metrics.Metrics
	logger     *zap.Logger
	opts       AnalysisOptions

	mu       sync.Mutex
	analyses *lru.Cache[int64, *userAnalysis]
}

// AnalysisDeps внешние зависимости сервиса; nil-поля кроме Users и Detector допустимы
type AnalysisDeps struct {
	Users      *UserService
	Detector   port.Detector
	Classifier port.Classifier
	Insights   port.InsightGenerator
	Gate       port.QualityGate
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// NewAnalysisService создаёт сервис, который ведёт снимок от детектора до аннотированного JPEG.
func NewAnalysisService(deps AnalysisDeps, opts AnalysisOptions) (*AnalysisService, error) {
	if opts.SessionCacheSize <= 0 {
		opts.SessionCacheSize = 256
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = 90
	}
	analyses, err := lru.New[int64, *userAnalysis](opts.SessionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	return &AnalysisService{
		users:      deps.Users,
		detector:   deps.Detector,
		classifier: deps.Classifier,
		insights:   deps.Insights,
		gate:       deps.Gate,
		renderer:   overlay.NewRenderer(deps.Logger.Named("overlay")),
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		opts:       opts,
		analyses:   analyses,
	}, nil
}

// Analyze отправляет снимок в детектор, заменяет прошлый анализ пользователя целиком,
// затем параллельно рисует рамки и запрашивает заключение.
// Ошибка заключения не роняет анализ и возвращается в AnalysisOutput.InsightErr.
func (s *AnalysisService) Analyze(ctx context.Context, userID, chatID int64, photoID string, photo []byte) (*AnalysisOutput, error) {
	if s.detector == nil {
		return nil, ErrDetectorNotConfigured
	}
	s.metrics.Analyses.Add(1)

	if s.gate != nil {
		if err := s.gate.Check(ctx, photo); err != nil {
			s.metrics.QualityRejects.Add(1)
			return nil, fmt.Errorf("quality gate: %w", err)
		}
	}

	res, err := s.detector.Detect(ctx, photo)
	if err != nil {
		s.metrics.AnalysisErrors.Add(1)
		return nil, err
	}
	res.ID = uuid.NewString()
	res.ImageID = photoID
	if res.ImageID == "" {
		res.ImageID = res.ID
	}
	res.CreatedAt = time.Now()

	if s.classifier != nil {
		cls, err := s.classifier.Classify(ctx, photo)
		if err != nil {
			s.logger.Warn("classification failed", zap.String("analysis_id", res.ID), zap.Error(err))
		} else {
			res.Classification = cls
		}
	}

	user, err := s.users.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	ua := s.entry(userID)
	ua.mu.Lock()
	ua.result = res
	if id, ok := ua.session.CachedID(); ok && id != res.ImageID {
		ua.session.Reset()
	}
	ua.mu.Unlock()

	s.logger.Info("analysis received",
		zap.String("analysis_id", res.ID),
		zap.Int64("user_id", userID),
		zap.Int("detections", len(res.Detections)),
		zap.Int("image_width", res.ImageWidth),
		zap.Int("image_height", res.ImageHeight),
	)

	out := &AnalysisOutput{
		Result:           res,
		Stats:            entity.ComputeStats(res.Detections),
		ThresholdPercent: user.ThresholdPercent,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.render(ua.session, res, user.ThresholdPercent, out)
		if errors.Is(err, overlay.ErrSuperseded) {
			s.logger.Info("render superseded by a newer photo", zap.String("analysis_id", res.ID))
			out.Superseded = true
			return nil
		}
		return err
	})
	if s.insights != nil {
		g.Go(func() error {
			ins, err := s.insights.Describe(gctx, res.Detections)
			if err != nil {
				s.metrics.InsightErrors.Add(1)
				s.logger.Warn("insight generation failed", zap.String("analysis_id", res.ID), zap.Error(err))
				out.InsightErr = err
				return nil
			}
			s.metrics.Insights.Add(1)
			out.Insight = ins
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Rerender перерисовывает последний анализ с текущим порогом пользователя без обращения к сервисам.
func (s *AnalysisService) Rerender(ctx context.Context, userID, chatID int64) (*AnalysisOutput, error) {
	ua, ok := s.analyses.Get(userID)
	if !ok {
		return nil, ErrNoAnalysis
	}
	res := ua.current()
	if res == nil {
		return nil, ErrNoAnalysis
	}
	user, err := s.users.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if ua.session.Cached(res.ImageID) {
		s.metrics.Rerenders.Add(1)
	}
	out := &AnalysisOutput{
		Result:           res,
		Stats:            entity.ComputeStats(res.Detections),
		ThresholdPercent: user.ThresholdPercent,
	}
	if err := s.render(ua.session, res, user.ThresholdPercent, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Last возвращает последний анализ пользователя.
func (s *AnalysisService) Last(userID int64) (*entity.AnalysisResult, bool) {
	ua, ok := s.analyses.Get(userID)
	if !ok || ua.current() == nil {
		return nil, false
	}
	return ua.current(), true
}

func (s *AnalysisService) entry(userID int64) *userAnalysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ua, ok := s.analyses.Get(userID); ok {
		return ua
	}
	ua := &userAnalysis{session: overlay.NewSession(s.renderer, overlay.WithDecoder(s.opts.Decoder))}
	s.analyses.Add(userID, ua)
	return ua
}

func (s *AnalysisService) render(session *overlay.Session, res *entity.AnalysisResult, thresholdPercent int, out *AnalysisOutput) error {
	threshold := overlay.ThresholdFromPercent(thresholdPercent)
	frame, err := session.Render(overlay.Source{ID: res.ImageID, Data: res.Image}, res.Detections, threshold, s.opts.DisplayWidth)
	if err != nil {
		if errors.Is(err, overlay.ErrImageDecode) {
			s.metrics.DecodeErrors.Add(1)
		}
		return fmt.Errorf("render overlay: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame.Image, &jpeg.Options{Quality: s.opts.JPEGQuality}); err != nil {
		return fmt.Errorf("encode overlay: %w", err)
	}

	s.metrics.Renders.Add(1)
	s.metrics.DetectionsDrawn.Add(uint64(frame.Drawn))
	s.metrics.DetectionsSkipped.Add(uint64(frame.Skipped))

	out.Frame = frame
	out.Annotated = buf.Bytes()
	out.Visible = frame.Drawn
	return nil
}
