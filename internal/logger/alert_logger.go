// Package logger provides alert lifecycle audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AlertLogger provides dedicated audit trail logging for value-bet alerts.
type AlertLogger struct {
	*logrus.Entry
}

// NewAlertLogger creates a new alert audit logger.
func NewAlertLogger(baseLogger *logrus.Logger) *AlertLogger {
	return &AlertLogger{
		Entry: baseLogger.WithField("component", "alerts"),
	}
}

// LogAlertCreated logs a newly created value-bet alert.
func (al *AlertLogger) LogAlertCreated(alertID, eventID, selection, platform string, odds, valuePct, confidence float64, expiresAt time.Time) {
	al.WithFields(logrus.Fields{
		"alert_id":   alertID,
		"event_id":   eventID,
		"selection":  selection,
		"platform":   platform,
		"odds":       odds,
		"value_pct":  valuePct,
		"confidence": confidence,
		"expires_at": expiresAt.Unix(),
	}).Info("Value bet alert created")
}

// LogAlertRefreshed logs an existing ACTIVE alert updated in place by a
// repeat detection.
func (al *AlertLogger) LogAlertRefreshed(alertID, eventID, selection string, oldValuePct, newValuePct float64) {
	al.WithFields(logrus.Fields{
		"alert_id":      alertID,
		"event_id":      eventID,
		"selection":     selection,
		"old_value_pct": oldValuePct,
		"new_value_pct": newValuePct,
	}).Info("Value bet alert refreshed")
}

// LogAlertStateChange logs an alert status transition.
func (al *AlertLogger) LogAlertStateChange(alertID string, oldStatus, newStatus, reason string) {
	al.WithFields(logrus.Fields{
		"alert_id":   alertID,
		"old_status": oldStatus,
		"new_status": newStatus,
		"reason":     reason,
	}).Info("Alert status changed")
}

// LogExpirySweep logs the outcome of an alert expiry sweep.
func (al *AlertLogger) LogExpirySweep(expired int, durationMs float64) {
	al.WithFields(logrus.Fields{
		"expired":     expired,
		"duration_ms": durationMs,
	}).Info("Alert expiry sweep completed")
}
