package models

import "errors"

// Custom errors
var (
	ErrNotFound               = errors.New("record not found")
	ErrDuplicateKey           = errors.New("duplicate key violation")
	ErrInvalidID              = errors.New("invalid ID format")
	ErrInsufficientSelections = errors.New("market has fewer than two priced selections")
	ErrNoActiveOdds           = errors.New("no active odds for selection")
	ErrInvalidTransition      = errors.New("invalid alert status transition")
	ErrSportKeyRequired       = errors.New("sport key is required")
)
