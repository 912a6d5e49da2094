package models

import (
	"time"

	"github.com/google/uuid"
)

// Event status values
const (
	EventStatusScheduled = "SCHEDULED"
	EventStatusLive      = "LIVE"
	EventStatusFinished  = "FINISHED"
	EventStatusCancelled = "CANCELLED"
)

// Event represents a sporting event in the system
type Event struct {
	ID         uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	SportID    uuid.UUID `db:"sport_id" json:"sport_id" validate:"required,uuid4"`
	ExternalID string    `db:"external_id" json:"external_id" validate:"required"`
	HomeTeam   string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam   string    `db:"away_team" json:"away_team" validate:"required"`
	StartTime  time.Time `db:"start_time" json:"start_time" validate:"required"`
	Status     string    `db:"status" json:"status" validate:"oneof=SCHEDULED LIVE FINISHED CANCELLED"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	HomeScore  *int      `db:"home_score" json:"home_score,omitempty"`
	AwayScore  *int      `db:"away_score" json:"away_score,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// HasResult reports whether the event finished with a recorded score
func (e *Event) HasResult() bool {
	return e.Status == EventStatusFinished && e.HomeScore != nil && e.AwayScore != nil
}

// Winner returns the winning selection for a finished event, or DRAW
func (e *Event) Winner() string {
	if !e.HasResult() {
		return ""
	}
	switch {
	case *e.HomeScore > *e.AwayScore:
		return SelectionHome
	case *e.AwayScore > *e.HomeScore:
		return SelectionAway
	default:
		return SelectionDraw
	}
}

// IsUpcoming checks if the event hasn't started yet
func (e *Event) IsUpcoming() bool {
	return e.Status == EventStatusScheduled && e.StartTime.After(time.Now())
}

// TimeToStart returns the duration until the event starts
func (e *Event) TimeToStart() time.Duration {
	return time.Until(e.StartTime)
}

// StartsWithin reports whether the event starts inside the given window
func (e *Event) StartsWithin(window time.Duration) bool {
	until := time.Until(e.StartTime)
	return until > 0 && until <= window
}
