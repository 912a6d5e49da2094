package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/oddsedge/internal/models"
)

// SportRepository defines the interface for sport data access
type SportRepository interface {
	Create(ctx context.Context, sport *models.Sport) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sport, error)
	GetByKey(ctx context.Context, key string) (*models.Sport, error)
	GetOrCreate(ctx context.Context, key, name string) (*models.Sport, error)
	GetActive(ctx context.Context, limit int) ([]*models.Sport, error)
	Update(ctx context.Context, sport *models.Sport) error
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Event, error)
	GetByTeamsAndDay(ctx context.Context, sportID uuid.UUID, homeTeam, awayTeam string, day time.Time) (*models.Event, error)
	GetUpcoming(ctx context.Context, sportID uuid.UUID, window time.Duration, limit int) ([]*models.Event, error)
	GetFinishedByTeam(ctx context.Context, sportID uuid.UUID, team string, limit int) ([]*models.Event, error)
	GetFinishedBetween(ctx context.Context, sportID uuid.UUID, teamA, teamB string, limit int) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// MarketRepository defines the interface for market data access
type MarketRepository interface {
	Create(ctx context.Context, market *models.Market) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Market, error)
	GetOrCreate(ctx context.Context, eventID uuid.UUID, marketType string) (*models.Market, error)
	GetByEventID(ctx context.Context, eventID uuid.UUID) ([]*models.Market, error)
}

// OddsRepository defines the interface for odds data access
type OddsRepository interface {
	Insert(ctx context.Context, odds *models.Odds) error
	GetActiveByMarket(ctx context.Context, marketID uuid.UUID) ([]*models.Odds, error)
	GetActiveBySelection(ctx context.Context, marketID uuid.UUID, selection string) ([]*models.Odds, error)
	Supersede(ctx context.Context, marketID uuid.UUID, selection, source string, replacement *models.Odds) error
	AppendHistory(ctx context.Context, history []*models.OddsHistory) error
	GetHistory(ctx context.Context, eventID uuid.UUID, selection string, start, end time.Time) ([]*models.OddsHistory, error)
}

// PredictionRepository defines the interface for prediction data access.
// Predictions are versioned: Insert never mutates a stored row.
type PredictionRepository interface {
	Insert(ctx context.Context, prediction *models.Prediction) error
	GetCurrent(ctx context.Context, eventID, marketID uuid.UUID, selection string) (*models.Prediction, error)
	GetCurrentByMarket(ctx context.Context, eventID, marketID uuid.UUID) ([]*models.Prediction, error)
	GetByEventID(ctx context.Context, eventID uuid.UUID) ([]*models.Prediction, error)
	MarkOutcome(ctx context.Context, id uuid.UUID, wasCorrect bool) error
}

// AlertRepository defines the interface for value-bet alert data access
type AlertRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ValueBetAlert, error)
	GetActive(ctx context.Context, eventID, marketID uuid.UUID, selection string, userID *uuid.UUID) (*models.ValueBetAlert, error)
	UpsertActive(ctx context.Context, alert *models.ValueBetAlert) (created bool, err error)
	Update(ctx context.Context, alert *models.ValueBetAlert) error
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	GetActiveByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.ValueBetAlert, error)
	GetByUser(ctx context.Context, userID uuid.UUID, status models.AlertStatus, limit int) ([]*models.ValueBetAlert, error)
}
