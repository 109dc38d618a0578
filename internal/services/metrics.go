package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the advisor gateway
type Metrics struct {
	ChatRequests    prometheus.Counter
	ChatOutcomes    *prometheus.CounterVec
	CacheHits       prometheus.Counter
	UpstreamLatency prometheus.Histogram
	CandidateCount  prometheus.Histogram
}

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	return &Metrics{
		ChatRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gemora_advisor_requests_total",
			Help: "Total number of advisor chat requests received",
		}),

		// Outcome is the advisor error code, or "ok" / "cache_hit"
		ChatOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gemora_advisor_outcomes_total",
			Help: "Advisor chat outcomes by result code",
		}, []string{"outcome"}),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gemora_advisor_cache_hits_total",
			Help: "Chat requests served from the response cache",
		}),

		UpstreamLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gemora_advisor_upstream_duration_seconds",
			Help:    "Upstream generation latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		}),

		CandidateCount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gemora_advisor_candidates_returned",
			Help:    "Catalog candidates attached to each advisor reply",
			Buckets: []float64{0, 1, 2, 3},
		}),
	}
}

// RecordOutcome counts one finished request under its result code.
func (m *Metrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.ChatOutcomes.WithLabelValues(outcome).Inc()
}
