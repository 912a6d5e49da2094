package models

import (
	"time"

	"github.com/google/uuid"
)

// Sport represents a sport category tracked by the scanner
type Sport struct {
	ID        uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	Key       string    `db:"key" json:"key" validate:"required"`
	Name      string    `db:"name" json:"name" validate:"required"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
