package models

import (
	"time"

	"github.com/google/uuid"
)

// Odds represents a bookmaker quote for one selection of a market.
// Superseded quotes are deactivated, never deleted; each supersession
// appends a row to the odds history log.
type Odds struct {
	ID          uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	MarketID    uuid.UUID `db:"market_id" json:"market_id" validate:"required,uuid4"`
	Selection   string    `db:"selection" json:"selection" validate:"required"`
	Decimal     float64   `db:"decimal" json:"decimal" validate:"required,gt=1"`
	Source      string    `db:"source" json:"source" validate:"required"`
	Probability float64   `db:"probability" json:"probability"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ImpliedProbability returns 1/decimal, the probability the price encodes
// before margin removal
func (o *Odds) ImpliedProbability() float64 {
	if o.Decimal <= 0 {
		return 0
	}
	return 1.0 / o.Decimal
}

// OddsHistory is one row of the append-only odds movement log
type OddsHistory struct {
	Time      time.Time `db:"time" json:"time" validate:"required"`
	EventID   uuid.UUID `db:"event_id" json:"event_id" validate:"required,uuid4"`
	MarketID  uuid.UUID `db:"market_id" json:"market_id" validate:"required,uuid4"`
	Selection string    `db:"selection" json:"selection" validate:"required"`
	Decimal   float64   `db:"decimal" json:"decimal" validate:"required,gt=1"`
	Source    string    `db:"source" json:"source"`
}
