// Package metrics provides the centralized Prometheus metrics registry for
// the prediction pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsedge",
		Name:      "predictions_generated_total",
		Help:      "Total number of first-time predictions stored",
	})
	PredictionsUpdatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsedge",
		Name:      "predictions_updated_total",
		Help:      "Total number of prediction versions stored after odds drift",
	})
	PredictionsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oddsedge",
		Name:      "predictions_skipped_total",
		Help:      "Total number of selections skipped, by reason",
	}, []string{"reason"})
	RecomputeErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsedge",
		Name:      "recompute_errors_total",
		Help:      "Total number of per-event failures during recompute cycles",
	})
	ValueBetsDetectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsedge",
		Name:      "value_bets_detected_total",
		Help:      "Total number of qualifying value-bet candidates",
	})
	AlertsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsedge",
		Name:      "alerts_created_total",
		Help:      "Total number of value-bet alerts created",
	})
	AlertsRefreshedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsedge",
		Name:      "alerts_refreshed_total",
		Help:      "Total number of existing ACTIVE alerts updated in place",
	})
	AlertsExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsedge",
		Name:      "alerts_expired_total",
		Help:      "Total number of alerts expired by the background sweep",
	})
	AlertsInvalidatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsedge",
		Name:      "alerts_invalidated_total",
		Help:      "Total number of alerts invalidated by odds movement",
	})
	ProviderErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oddsedge",
		Name:      "provider_errors_total",
		Help:      "Total number of external provider failures, by provider",
	}, []string{"provider"})
	OddsMovementsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsedge",
		Name:      "odds_movements_total",
		Help:      "Total number of recorded odds movements",
	})
)

// Gauge metrics
var (
	ActiveSports = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oddsedge",
		Name:      "active_sports",
		Help:      "Number of sports covered by the last recompute cycle",
	})
	FeatureCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oddsedge",
		Name:      "feature_cache_hit_ratio",
		Help:      "Hit ratio of the feature cache",
	})
	LastCycleErrors = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oddsedge",
		Name:      "last_cycle_errors",
		Help:      "Error count of the most recent recompute cycle",
	})
	PredictionConfidence = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "oddsedge",
		Name:      "prediction_confidence",
		Help:      "Confidence of the most recent prediction per sport",
	}, []string{"sport_key"})
)

// Histogram metrics
var (
	RecomputeCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "oddsedge",
		Name:      "recompute_cycle_duration_seconds",
		Help:      "Duration of full recompute cycles in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600},
	})
	ValueScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "oddsedge",
		Name:      "value_scan_duration_seconds",
		Help:      "Duration of value-bet scans in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	ProviderLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "oddsedge",
		Name:      "provider_latency_seconds",
		Help:      "Latency of external provider calls in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider", "operation"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsGeneratedTotal)
		registry.MustRegister(PredictionsUpdatedTotal)
		registry.MustRegister(PredictionsSkippedTotal)
		registry.MustRegister(RecomputeErrorsTotal)
		registry.MustRegister(ValueBetsDetectedTotal)
		registry.MustRegister(AlertsCreatedTotal)
		registry.MustRegister(AlertsRefreshedTotal)
		registry.MustRegister(AlertsExpiredTotal)
		registry.MustRegister(AlertsInvalidatedTotal)
		registry.MustRegister(ProviderErrorsTotal)
		registry.MustRegister(OddsMovementsTotal)

		registry.MustRegister(ActiveSports)
		registry.MustRegister(FeatureCacheHitRatio)
		registry.MustRegister(LastCycleErrors)
		registry.MustRegister(PredictionConfidence)

		registry.MustRegister(RecomputeCycleDuration)
		registry.MustRegister(ValueScanDuration)
		registry.MustRegister(ProviderLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPredictionStored records a stored prediction version.
func RecordPredictionStored(refreshed bool) {
	if refreshed {
		PredictionsUpdatedTotal.Inc()
	} else {
		PredictionsGeneratedTotal.Inc()
	}
}

// RecordSkip records a skipped selection with its reason.
func RecordSkip(reason string) {
	PredictionsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordRecomputeError records a contained per-event failure.
func RecordRecomputeError() {
	RecomputeErrorsTotal.Inc()
}

// RecordCycleDuration records a full recompute cycle duration.
func RecordCycleDuration(seconds float64) {
	RecomputeCycleDuration.Observe(seconds)
}

// RecordProviderCall records the latency of one provider call.
func RecordProviderCall(provider, operation string, seconds float64) {
	ProviderLatency.WithLabelValues(provider, operation).Observe(seconds)
}

// RecordProviderError records a provider failure.
func RecordProviderError(provider string) {
	ProviderErrorsTotal.WithLabelValues(provider).Inc()
}
