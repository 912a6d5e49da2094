package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = NewLogger("warn")
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	// Unknown levels fall back to info
	log = NewLogger("nonsense")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestPipelineLoggerCycleCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogCycleCompleted(3, 12, 4, 1, 850.0)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "pipeline", logEntry["component"])
	assert.Equal(t, float64(3), logEntry["sports_processed"])
	assert.Equal(t, float64(12), logEntry["generated"])
	assert.Equal(t, float64(4), logEntry["updated"])
	assert.Equal(t, float64(1), logEntry["errors"])
}

func TestPipelineLoggerDriftSkip(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogDriftSkip("event_123", "HOME", 0.02, 0.05)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "event_123", logEntry["event_id"])
	assert.Equal(t, "HOME", logEntry["selection"])
	assert.Equal(t, 0.02, logEntry["drift"])
	assert.Equal(t, 0.05, logEntry["threshold"])
}

func TestPipelineLoggerUnitFailure(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogUnitFailure("event_123", errors.New("market unavailable"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "event_123", logEntry["event_id"])
	assert.Equal(t, "market unavailable", logEntry["error"])
	assert.Equal(t, "warning", logEntry["level"])
}

func TestAlertLoggerCreated(t *testing.T) {
	log, buf := setupTestLogger()
	alertLogger := NewAlertLogger(log)

	expires := time.Now().Add(6 * time.Hour)
	alertLogger.LogAlertCreated("alert_001", "event_123", "HOME", "Pinnacle", 2.10, 15.5, 0.75, expires)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "alerts", logEntry["component"])
	assert.Equal(t, "alert_001", logEntry["alert_id"])
	assert.Equal(t, "Pinnacle", logEntry["platform"])
	assert.Equal(t, 2.10, logEntry["odds"])
}

func TestAlertLoggerStateChange(t *testing.T) {
	log, buf := setupTestLogger()
	alertLogger := NewAlertLogger(log)

	alertLogger.LogAlertStateChange("alert_001", "ACTIVE", "INVALIDATED", "odds moved against edge")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "alert_001", logEntry["alert_id"])
	assert.Equal(t, "ACTIVE", logEntry["old_status"])
	assert.Equal(t, "INVALIDATED", logEntry["new_status"])
}

func TestProviderLoggerFeatureLookup(t *testing.T) {
	log, buf := setupTestLogger()
	providerLogger := NewProviderLogger(log)

	providerLogger.LogFeatureLookup("team_form", "arsenal", "history", false, 12.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "provider", logEntry["component"])
	assert.Equal(t, "team_form", logEntry["category"])
	assert.Equal(t, "history", logEntry["tier"])
	assert.Equal(t, false, logEntry["cache_hit"])
}

func TestProviderLoggerTierFallback(t *testing.T) {
	log, buf := setupTestLogger()
	providerLogger := NewProviderLogger(log)

	providerLogger.LogTierFallback("head_to_head", "chelsea", "live", "history", "provider disabled")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "head_to_head", logEntry["category"])
	assert.Equal(t, "live", logEntry["from_tier"])
	assert.Equal(t, "history", logEntry["to_tier"])
}
