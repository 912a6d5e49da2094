// Package logger provides prediction pipeline logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for prediction pipeline runs.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogCycleCompleted logs the outcome of one recompute cycle.
func (pl *PipelineLogger) LogCycleCompleted(sportsProcessed, generated, updated, errors int, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"sports_processed": sportsProcessed,
		"generated":        generated,
		"updated":          updated,
		"errors":           errors,
		"duration_ms":      durationMs,
	}).Info("Recompute cycle completed")
}

// LogPredictionStored logs a stored prediction version.
func (pl *PipelineLogger) LogPredictionStored(eventID, marketID, selection string, probability, confidence float64, refreshed bool) {
	pl.WithFields(logrus.Fields{
		"event_id":    eventID,
		"market_id":   marketID,
		"selection":   selection,
		"probability": probability,
		"confidence":  confidence,
		"refreshed":   refreshed,
	}).Debug("Prediction stored")
}

// LogDriftSkip logs a selection left untouched because the price drift stayed
// below the recompute threshold.
func (pl *PipelineLogger) LogDriftSkip(eventID, selection string, drift, threshold float64) {
	pl.WithFields(logrus.Fields{
		"event_id":  eventID,
		"selection": selection,
		"drift":     drift,
		"threshold": threshold,
	}).Debug("Drift below threshold, skipping recompute")
}

// LogMarketSkipped logs a market skipped for insufficient priced selections.
func (pl *PipelineLogger) LogMarketSkipped(eventID, marketID, reason string) {
	pl.WithFields(logrus.Fields{
		"event_id":  eventID,
		"market_id": marketID,
		"reason":    reason,
	}).Debug("Market skipped this cycle")
}

// LogUnitFailure logs a per-event failure that was contained by the batch.
func (pl *PipelineLogger) LogUnitFailure(eventID string, err error) {
	pl.WithFields(logrus.Fields{
		"event_id": eventID,
		"error":    err.Error(),
	}).Warn("Event processing failed, continuing batch")
}
