package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics счётчики анализа и отрисовки
type Metrics struct {
	// Анализы
	Analyses       atomic.Uint64
	AnalysisErrors atomic.Uint64
	QualityRejects atomic.Uint64

	// Отрисовка
	Renders           atomic.Uint64
	Rerenders         atomic.Uint64
	DecodeErrors      atomic.Uint64
	DetectionsDrawn   atomic.Uint64
	DetectionsSkipped atomic.Uint64

	// Заключения ИИ
	Insights      atomic.Uint64
	InsightErrors atomic.Uint64

	registry *prometheus.Registry
	gauges   map[string]prometheus.Collector
}

// New создаёт метрики с собственным реестром Prometheus
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gauges:   make(map[string]prometheus.Collector),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	counters := []struct {
		name string
		help string
		v    *atomic.Uint64
	}{
		{"skinbot_analyses_total", "Photos sent to the detector", &m.Analyses},
		{"skinbot_analysis_errors_total", "Analyses that failed before rendering", &m.AnalysisErrors},
		{"skinbot_quality_rejects_total", "Photos rejected by the quality gate", &m.QualityRejects},
		{"skinbot_renders_total", "Completed overlay renders", &m.Renders},
		{"skinbot_rerenders_total", "Renders served from the cached decoded image", &m.Rerenders},
		{"skinbot_decode_errors_total", "Images that could not be decoded", &m.DecodeErrors},
		{"skinbot_detections_drawn_total", "Bounding boxes drawn", &m.DetectionsDrawn},
		{"skinbot_detections_skipped_total", "Detections skipped for invalid geometry", &m.DetectionsSkipped},
		{"skinbot_insights_total", "Insights generated", &m.Insights},
		{"skinbot_insight_errors_total", "Insight generation failures", &m.InsightErrors},
	}
	for _, c := range counters {
		v := c.v
		g := prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: c.name, Help: c.help},
			func() float64 { return float64(v.Load()) },
		)
		m.registry.MustRegister(g)
		m.gauges[c.name] = g
	}
}

// Collector возвращает зарегистрированную метрику по имени, nil если такой нет
func (m *Metrics) Collector(name string) prometheus.Collector {
	return m.gauges[name]
}

// Handler отдаёт метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
