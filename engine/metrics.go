package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's prometheus collectors. A nil *Metrics disables
// instrumentation.
type Metrics struct {
	evaluations      *prometheus.CounterVec
	nodeComputations *prometheus.CounterVec
	planCache        *prometheus.CounterVec
	duration         prometheus.Histogram
}

// NewMetrics creates the engine collectors and registers them with reg. A nil
// registerer leaves them unregistered, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tacore_engine_evaluations_total",
				Help: "Total number of frame evaluations",
			}, []string{"status"},
		),
		nodeComputations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tacore_engine_node_computations_total",
				Help: "Total number of graph nodes computed, by node kind",
			}, []string{"kind"},
		),
		planCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tacore_engine_plan_cache_total",
				Help: "Plan cache lookups by result",
			}, []string{"result"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tacore_engine_evaluation_duration_seconds",
				Help:    "Frame evaluation duration in seconds (successful evaluations only)",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
			},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.evaluations, m.nodeComputations, m.planCache, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeEvaluation(err error, seconds float64) {
	if m == nil {
		return
	}
	if err != nil {
		m.evaluations.WithLabelValues("error").Inc()
		return
	}
	m.evaluations.WithLabelValues("ok").Inc()
	m.duration.Observe(seconds)
}

func (m *Metrics) observeNode(kind string) {
	if m == nil {
		return
	}
	m.nodeComputations.WithLabelValues(kind).Inc()
}

func (m *Metrics) observePlanCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.planCache.WithLabelValues(result).Inc()
}
