package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeAlert() *ValueBetAlert {
	return &ValueBetAlert{
		ID:              uuid.New(),
		EventID:         uuid.New(),
		MarketID:        uuid.New(),
		Selection:       SelectionHome,
		Odds:            2.10,
		Probability:     0.55,
		ValuePercentage: 10.4,
		Confidence:      0.75,
		Status:          AlertActive,
		ExpiresAt:       time.Now().Add(6 * time.Hour),
	}
}

func TestAlertTransitionsFromActive(t *testing.T) {
	for _, target := range []AlertStatus{AlertTaken, AlertExpired, AlertInvalid} {
		alert := activeAlert()
		err := alert.Transition(target)
		require.NoError(t, err)
		assert.Equal(t, target, alert.Status)
	}
}

func TestAlertTerminalStatesAreFinal(t *testing.T) {
	for _, terminal := range []AlertStatus{AlertTaken, AlertExpired, AlertInvalid} {
		alert := activeAlert()
		require.NoError(t, alert.Transition(terminal))

		err := alert.Transition(AlertActive)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, terminal, alert.Status)
	}
}

func TestAlertMarkTaken(t *testing.T) {
	alert := activeAlert()

	err := alert.MarkTaken("bet-8821")
	require.NoError(t, err)
	assert.Equal(t, AlertTaken, alert.Status)
	require.NotNil(t, alert.ExternalBetID)
	assert.Equal(t, "bet-8821", *alert.ExternalBetID)

	// A taken alert cannot be taken again
	err = alert.MarkTaken("bet-9000")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAlertInvalidateRecordsReason(t *testing.T) {
	alert := activeAlert()
	alert.Factors = json.RawMessage(`{"bookmakerCount": 4}`)

	err := alert.Invalidate("odds moved against edge")
	require.NoError(t, err)
	assert.Equal(t, AlertInvalid, alert.Status)

	var factors map[string]interface{}
	require.NoError(t, json.Unmarshal(alert.Factors, &factors))
	assert.Equal(t, "odds moved against edge", factors["invalidationReason"])
	assert.NotEmpty(t, factors["invalidatedAt"])

	// Pre-existing factors survive the merge
	assert.Equal(t, float64(4), factors["bookmakerCount"])
}

func TestAlertIsExpired(t *testing.T) {
	alert := activeAlert()
	alert.ExpiresAt = time.Now().Add(-time.Minute)
	assert.True(t, alert.IsExpired(time.Now()))

	// Only ACTIVE alerts expire; terminal states are left as-is
	require.NoError(t, alert.Transition(AlertTaken))
	assert.False(t, alert.IsExpired(time.Now()))
}
