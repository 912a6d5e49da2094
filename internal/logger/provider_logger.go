// Package logger provides external provider logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ProviderLogger provides dedicated logging for external odds and statistics
// provider calls.
type ProviderLogger struct {
	*logrus.Entry
}

// NewProviderLogger creates a new provider logger.
func NewProviderLogger(baseLogger *logrus.Logger) *ProviderLogger {
	return &ProviderLogger{
		Entry: baseLogger.WithField("component", "provider"),
	}
}

// LogOddsFetch logs an odds provider request.
func (pl *ProviderLogger) LogOddsFetch(sportKey string, eventsReturned, bookmakers int, latencyMs float64) {
	pl.WithFields(logrus.Fields{
		"sport_key":       sportKey,
		"events_returned": eventsReturned,
		"bookmakers":      bookmakers,
		"latency_ms":      latencyMs,
	}).Info("Odds fetch completed")
}

// LogFeatureLookup logs a feature provider lookup and the tier that served it.
func (pl *ProviderLogger) LogFeatureLookup(category, team, tier string, cacheHit bool, latencyMs float64) {
	pl.WithFields(logrus.Fields{
		"category":   category,
		"team":       team,
		"tier":       tier,
		"cache_hit":  cacheHit,
		"latency_ms": latencyMs,
	}).Debug("Feature lookup completed")
}

// LogTierFallback logs a fallback from one feature tier to the next.
func (pl *ProviderLogger) LogTierFallback(category, team, fromTier, toTier, reason string) {
	pl.WithFields(logrus.Fields{
		"category":  category,
		"team":      team,
		"from_tier": fromTier,
		"to_tier":   toTier,
		"reason":    reason,
	}).Debug("Feature tier fallback")
}

// LogProviderError logs a provider call failure.
func (pl *ProviderLogger) LogProviderError(provider, operation string, err error) {
	pl.WithFields(logrus.Fields{
		"provider":  provider,
		"operation": operation,
		"error":     err.Error(),
	}).Warn("Provider call failed")
}
