package container

import (
	"go.uber.org/zap"

	app "skin-vision-bot/internal/application"
	"skin-vision-bot/internal/domain/port"
	"skin-vision-bot/internal/metrics"
)

type Container struct {
	UserService     *app.UserService
	AnalysisService *app.AnalysisService
}

// Deps адаптеры инфраструктуры; Classifier, Insights и Gate могут быть nil.
type Deps struct {
	Users      port.UserRepository
	Detector   port.Detector
	Classifier port.Classifier
	Insights   port.InsightGenerator
	Gate       port.QualityGate
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

func New(deps Deps, opts app.AnalysisOptions) (*Container, error) {
	userService := app.NewUserService(deps.Users)
	analysisService, err := app.NewAnalysisService(app.AnalysisDeps{
		Users:      userService,
		Detector:   deps.Detector,
		Classifier: deps.Classifier,
		Insights:   deps.Insights,
		Gate:       deps.Gate,
		Metrics:    deps.Metrics,
		Logger:     deps.Logger,
	}, opts)
	if err != nil {
		return nil, err
	}

	return &Container{
		UserService:     userService,
		AnalysisService: analysisService,
	}, nil
}
