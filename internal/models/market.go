package models

import (
	"time"

	"github.com/google/uuid"
)

// Market type tags
const (
	MarketMatchWinner    = "match_winner"
	MarketOverUnder      = "over_under"
	MarketBothTeamsScore = "both_teams_score"
)

// Canonical selection labels for match-winner markets
const (
	SelectionHome = "Home"
	SelectionAway = "Away"
	SelectionDraw = "Draw"
)

// Market represents a betting market belonging to an event.
// Markets are created lazily the first time odds for the type are observed.
type Market struct {
	ID        uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	EventID   uuid.UUID `db:"event_id" json:"event_id" validate:"required,uuid4"`
	Type      string    `db:"type" json:"type" validate:"required"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsMutuallyExclusive reports whether the market's selections form a
// mutually-exclusive, exhaustive outcome set (probabilities must sum to 1)
func (m *Market) IsMutuallyExclusive() bool {
	switch m.Type {
	case MarketMatchWinner, MarketOverUnder, MarketBothTeamsScore:
		return true
	}
	return false
}
