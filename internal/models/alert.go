package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AlertStatus is the lifecycle state of a value-bet alert
type AlertStatus string

// Alert lifecycle states
const (
	AlertActive  AlertStatus = "ACTIVE"
	AlertTaken   AlertStatus = "TAKEN"
	AlertExpired AlertStatus = "EXPIRED"
	AlertInvalid AlertStatus = "INVALID"
)

// validTransitions holds the allowed alert state machine edges. Terminal
// states have no outgoing edges.
var validTransitions = map[AlertStatus][]AlertStatus{
	AlertActive: {AlertTaken, AlertExpired, AlertInvalid},
}

// CanTransition reports whether moving from s to target is allowed
func (s AlertStatus) CanTransition(target AlertStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ValueBetAlert represents a detected mispriced selection surfaced to a user.
// At most one ACTIVE alert exists per (event, market, selection, user);
// repeat detections update the existing row in place.
type ValueBetAlert struct {
	ID              uuid.UUID       `db:"id" json:"id" validate:"required,uuid4"`
	EventID         uuid.UUID       `db:"event_id" json:"event_id" validate:"required,uuid4"`
	MarketID        uuid.UUID       `db:"market_id" json:"market_id" validate:"required,uuid4"`
	Selection       string          `db:"selection" json:"selection" validate:"required"`
	UserID          *uuid.UUID      `db:"user_id" json:"user_id"`
	Odds            float64         `db:"odds" json:"odds" validate:"required,gt=1"`
	Platform        string          `db:"platform" json:"platform"`
	Probability     float64         `db:"probability" json:"probability" validate:"gt=0,lt=1"`
	ValuePercentage float64         `db:"value_percentage" json:"value_percentage"`
	Confidence      float64         `db:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	Status          AlertStatus     `db:"status" json:"status" validate:"oneof=ACTIVE TAKEN EXPIRED INVALID"`
	Factors         json.RawMessage `db:"factors" json:"factors"`
	ExternalBetID   *string         `db:"external_bet_id" json:"external_bet_id"`
	ExpiresAt       time.Time       `db:"expires_at" json:"expires_at" validate:"required"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Transition moves the alert to the target status, enforcing the state
// machine centrally so callers cannot invent their own edges
func (a *ValueBetAlert) Transition(target AlertStatus) error {
	if !a.Status.CanTransition(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, target)
	}
	a.Status = target
	a.UpdatedAt = time.Now()
	return nil
}

// MarkTaken transitions the alert to TAKEN and records the external bet
func (a *ValueBetAlert) MarkTaken(externalBetID string) error {
	if err := a.Transition(AlertTaken); err != nil {
		return err
	}
	a.ExternalBetID = &externalBetID
	return nil
}

// Invalidate transitions the alert to INVALID and records the reason in the
// factors snapshot
func (a *ValueBetAlert) Invalidate(reason string) error {
	if err := a.Transition(AlertInvalid); err != nil {
		return err
	}

	factors := make(map[string]interface{})
	if len(a.Factors) > 0 {
		_ = json.Unmarshal(a.Factors, &factors)
	}
	factors["invalidationReason"] = reason
	factors["invalidatedAt"] = time.Now().UTC().Format(time.RFC3339)

	raw, err := json.Marshal(factors)
	if err != nil {
		return fmt.Errorf("failed to encode invalidation factors: %w", err)
	}
	a.Factors = raw
	return nil
}

// IsExpired reports whether an ACTIVE alert is past its expiry
func (a *ValueBetAlert) IsExpired(now time.Time) bool {
	return a.Status == AlertActive && now.After(a.ExpiresAt)
}
