// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scoring metrics
	ScoresComputed *prometheus.CounterVec
	ScoringLatency prometheus.Histogram
	CorpusSize     prometheus.Gauge
	ScoringErrors  prometheus.Counter

	// Yield classification metrics
	Classifications       *prometheus.CounterVec
	ClassificationLatency prometheus.Histogram

	// Pricing metrics
	PricingEvaluations *prometheus.CounterVec
	SafeguardAlerts    *prometheus.CounterVec
	CurrentFinalPrice  prometheus.Gauge

	// Telemetry metrics
	FeedMessages     prometheus.Counter
	FeedReconnects   prometheus.Counter
	PriceCachePoints prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulPoll prometheus.Gauge
	UptimeSeconds      prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_risk_lab"
	}

	return &Metrics{
		// Scoring metrics
		ScoresComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "scores_computed_total",
			Help:      "Total number of wallet scores computed by tier",
		}, []string{"tier"}),
		ScoringLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "latency_seconds",
			Help:      "Wallet scoring latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		CorpusSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "corpus_size",
			Help:      "Number of wallets in the percentile corpus",
		}),
		ScoringErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "errors_total",
			Help:      "Total number of scoring request errors",
		}),

		// Yield classification metrics
		Classifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "yieldtrap",
			Name:      "classifications_total",
			Help:      "Total number of pool classifications by status",
		}, []string{"status"}),
		ClassificationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "yieldtrap",
			Name:      "latency_seconds",
			Help:      "Pool classification latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Pricing metrics
		PricingEvaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "evaluations_total",
			Help:      "Total number of pricing evaluations by phase",
		}, []string{"phase"}),
		SafeguardAlerts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "safeguard_alerts_total",
			Help:      "Total number of safeguard alerts raised by type",
		}, []string{"alert"}),
		CurrentFinalPrice: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "current_final_price",
			Help:      "Final price from the most recent pricing evaluation",
		}),

		// Telemetry metrics
		FeedMessages: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "telemetry",
			Name:      "feed_messages_total",
			Help:      "Total number of market price feed messages handled",
		}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "telemetry",
			Name:      "feed_reconnects_total",
			Help:      "Total number of feed reconnect attempts",
		}),
		PriceCachePoints: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "telemetry",
			Name:      "price_cache_points",
			Help:      "Number of points retained in the price cache",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulPoll: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_poll_timestamp",
			Help:      "Unix timestamp of last successful pricing poll",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScore increments the scores computed counter for a tier.
func RecordScore(tier string, seconds float64) {
	DefaultMetrics.ScoresComputed.WithLabelValues(tier).Inc()
	DefaultMetrics.ScoringLatency.Observe(seconds)
}

// RecordScoringError increments the scoring error counter.
func RecordScoringError() {
	DefaultMetrics.ScoringErrors.Inc()
}

// UpdateCorpusSize updates the percentile corpus gauge.
func UpdateCorpusSize(size int) {
	DefaultMetrics.CorpusSize.Set(float64(size))
}

// RecordClassification increments the classification counter for a status.
func RecordClassification(status string, seconds float64) {
	DefaultMetrics.Classifications.WithLabelValues(status).Inc()
	DefaultMetrics.ClassificationLatency.Observe(seconds)
}

// RecordPricingEvaluation records one pricing evaluation.
func RecordPricingEvaluation(phase string, finalPrice float64) {
	DefaultMetrics.PricingEvaluations.WithLabelValues(phase).Inc()
	DefaultMetrics.CurrentFinalPrice.Set(finalPrice)
}

// RecordSafeguardAlert increments the safeguard alert counter.
func RecordSafeguardAlert(alert string) {
	DefaultMetrics.SafeguardAlerts.WithLabelValues(alert).Inc()
}

// RecordFeedMessage increments the feed messages counter.
func RecordFeedMessage() {
	DefaultMetrics.FeedMessages.Inc()
}

// UpdatePriceCachePoints updates the price cache size gauge.
func UpdatePriceCachePoints(size int) {
	DefaultMetrics.PriceCachePoints.Set(float64(size))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
