package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestEventHasResult(t *testing.T) {
	event := &Event{Status: EventStatusFinished, HomeScore: intPtr(2), AwayScore: intPtr(1)}
	assert.True(t, event.HasResult())

	// Finished without a recorded score is not a usable result
	assert.False(t, (&Event{Status: EventStatusFinished, HomeScore: intPtr(2)}).HasResult())
	assert.False(t, (&Event{Status: EventStatusScheduled, HomeScore: intPtr(2), AwayScore: intPtr(1)}).HasResult())
}

func TestEventWinner(t *testing.T) {
	homeWin := &Event{Status: EventStatusFinished, HomeScore: intPtr(3), AwayScore: intPtr(0)}
	assert.Equal(t, SelectionHome, homeWin.Winner())

	awayWin := &Event{Status: EventStatusFinished, HomeScore: intPtr(0), AwayScore: intPtr(1)}
	assert.Equal(t, SelectionAway, awayWin.Winner())

	draw := &Event{Status: EventStatusFinished, HomeScore: intPtr(1), AwayScore: intPtr(1)}
	assert.Equal(t, SelectionDraw, draw.Winner())

	pending := &Event{Status: EventStatusScheduled}
	assert.Equal(t, "", pending.Winner())
}

func TestEventIsUpcoming(t *testing.T) {
	upcoming := &Event{Status: EventStatusScheduled, StartTime: time.Now().Add(time.Hour)}
	assert.True(t, upcoming.IsUpcoming())

	started := &Event{Status: EventStatusScheduled, StartTime: time.Now().Add(-time.Minute)}
	assert.False(t, started.IsUpcoming())

	live := &Event{Status: EventStatusLive, StartTime: time.Now().Add(time.Hour)}
	assert.False(t, live.IsUpcoming())
}

func TestEventStartsWithin(t *testing.T) {
	event := &Event{StartTime: time.Now().Add(2 * time.Hour)}
	assert.True(t, event.StartsWithin(3*time.Hour))
	assert.False(t, event.StartsWithin(time.Hour))

	past := &Event{StartTime: time.Now().Add(-time.Hour)}
	assert.False(t, past.StartsWithin(3*time.Hour))
}
