// Package metrics exposes Prometheus collectors for the analytics engines.
// Labels are restricted to bounded sets (recommendation kinds, sentiment
// labels); user IDs and symbols are never used as label values.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RiskComputations counts completed risk computations
	RiskComputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantfolio_risk_computations_total",
		Help: "Total number of completed risk computations",
	})

	// RiskComputationDuration observes risk computation latency
	RiskComputationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quantfolio_risk_computation_duration_seconds",
		Help:    "Risk computation duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// StressTests counts completed stress test runs
	StressTests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantfolio_stress_tests_total",
		Help: "Total number of completed stress test runs",
	})

	// RecommendationsEmitted counts recommendations by rule kind
	RecommendationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quantfolio_recommendations_emitted_total",
		Help: "Total recommendations emitted, by rule kind",
	}, []string{"kind"})

	// SentimentReports counts generated sentiment reports by label
	SentimentReports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quantfolio_sentiment_reports_total",
		Help: "Total sentiment reports generated, by label",
	}, []string{"label"})

	// PersistenceFailures counts failed result-sink writes by entity
	PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quantfolio_persistence_failures_total",
		Help: "Total failed writes to the results store, by entity",
	}, []string{"entity"})
)
