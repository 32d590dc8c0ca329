// Package metrics exposes render statistics to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the graph service.
type Metrics struct {
	RendersTotal   *prometheus.CounterVec // labels: format
	RenderErrors   *prometheus.CounterVec // labels: stage
	RenderDuration prometheus.Histogram
	RenderPoints   prometheus.Histogram
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates the metrics and registers them on reg. A nil reg
// uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		RendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tpsgraph_renders_total",
			Help: "Graphs rendered (by output format)",
		}, []string{"format"}),
		RenderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tpsgraph_render_errors_total",
			Help: "Failed renders (by failing stage)",
		}, []string{"stage"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tpsgraph_render_duration_seconds",
			Help:    "Time from series fetch to encoded image",
			Buckets: prometheus.DefBuckets,
		}),
		RenderPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tpsgraph_render_points",
			Help:    "Data points per rendered graph",
			Buckets: []float64{0, 60, 360, 720, 1440, 2880, 10080},
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tpsgraph_cache_hits_total",
			Help: "Renders served from the cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tpsgraph_cache_misses_total",
			Help: "Renders not found in the cache",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.RendersTotal,
		m.RenderErrors,
		m.RenderDuration,
		m.RenderPoints,
		m.CacheHits,
		m.CacheMisses,
	)
	return m
}

// ObserveRender records one successful render.
func (m *Metrics) ObserveRender(format string, points int, took time.Duration) {
	m.RendersTotal.WithLabelValues(format).Inc()
	m.RenderPoints.Observe(float64(points))
	m.RenderDuration.Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
