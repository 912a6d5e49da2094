package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/oddsedge/internal/database"
	"github.com/yourusername/oddsedge/internal/models"
)

const eventColumns = "id, sport_id, external_id, home_team, away_team, start_time, status, is_active, home_score, away_score, created_at, updated_at"

// PostgresEventRepository implements EventRepository for PostgreSQL
type PostgresEventRepository struct {
	db *database.DB
}

// NewPostgresEventRepository creates a new event repository
func NewPostgresEventRepository(db *database.DB) EventRepository {
	return &PostgresEventRepository{db: db}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	event := &models.Event{}
	err := row.Scan(
		&event.ID, &event.SportID, &event.ExternalID, &event.HomeTeam, &event.AwayTeam,
		&event.StartTime, &event.Status, &event.IsActive, &event.HomeScore, &event.AwayScore,
		&event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Create inserts a new event
func (e *PostgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, sport_id, external_id, home_team, away_team, start_time, status, is_active, home_score, away_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := e.db.GetPool().Exec(ctx, query,
		event.ID, event.SportID, event.ExternalID, event.HomeTeam, event.AwayTeam,
		event.StartTime, event.Status, event.IsActive, event.HomeScore, event.AwayScore,
		event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by its ID
func (e *PostgresEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1", eventColumns)

	event, err := scanEvent(e.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// GetByExternalID retrieves an event by the provider's identifier
func (e *PostgresEventRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE external_id = $1", eventColumns)

	event, err := scanEvent(e.db.GetPool().QueryRow(ctx, query, externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event by external id: %w", err)
	}

	return event, nil
}

// GetByTeamsAndDay retrieves an event by team names starting on the given day.
// Used as a fallback when providers disagree on external identifiers.
func (e *PostgresEventRepository) GetByTeamsAndDay(ctx context.Context, sportID uuid.UUID, homeTeam, awayTeam string, day time.Time) (*models.Event, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE sport_id = $1 AND home_team = $2 AND away_team = $3
		  AND start_time >= $4 AND start_time < $5
		LIMIT 1
	`, eventColumns)

	event, err := scanEvent(e.db.GetPool().QueryRow(ctx, query, sportID, homeTeam, awayTeam, dayStart, dayEnd))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event by teams: %w", err)
	}

	return event, nil
}

// GetUpcoming retrieves active scheduled events starting within the window
func (e *PostgresEventRepository) GetUpcoming(ctx context.Context, sportID uuid.UUID, window time.Duration, limit int) ([]*models.Event, error) {
	now := time.Now()
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE sport_id = $1 AND is_active = true AND status = $2
		  AND start_time > $3 AND start_time <= $4
		ORDER BY start_time ASC
		LIMIT $5
	`, eventColumns)

	rows, err := e.db.GetPool().Query(ctx, query, sportID, models.EventStatusScheduled, now, now.Add(window), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// GetFinishedByTeam retrieves a team's most recent finished events with a
// recorded score, newest first
func (e *PostgresEventRepository) GetFinishedByTeam(ctx context.Context, sportID uuid.UUID, team string, limit int) ([]*models.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE sport_id = $1 AND (home_team = $2 OR away_team = $2)
		  AND status = $3 AND home_score IS NOT NULL AND away_score IS NOT NULL
		ORDER BY start_time DESC
		LIMIT $4
	`, eventColumns)

	rows, err := e.db.GetPool().Query(ctx, query, sportID, team, models.EventStatusFinished, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query finished events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// GetFinishedBetween retrieves finished meetings between two teams in either
// home/away order, newest first
func (e *PostgresEventRepository) GetFinishedBetween(ctx context.Context, sportID uuid.UUID, teamA, teamB string, limit int) ([]*models.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE sport_id = $1
		  AND ((home_team = $2 AND away_team = $3) OR (home_team = $3 AND away_team = $2))
		  AND status = $4 AND home_score IS NOT NULL AND away_score IS NOT NULL
		ORDER BY start_time DESC
		LIMIT $5
	`, eventColumns)

	rows, err := e.db.GetPool().Query(ctx, query, sportID, teamA, teamB, models.EventStatusFinished, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query head-to-head events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// Update updates an event's mutable fields
func (e *PostgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET home_team = $2, away_team = $3, start_time = $4, status = $5, is_active = $6,
		    home_score = $7, away_score = $8, updated_at = $9
		WHERE id = $1
	`

	event.UpdatedAt = time.Now()
	tag, err := e.db.GetPool().Exec(ctx, query,
		event.ID, event.HomeTeam, event.AwayTeam, event.StartTime, event.Status, event.IsActive,
		event.HomeScore, event.AwayScore, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// UpdateStatus updates only an event's lifecycle status
func (e *PostgresEventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE events SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := e.db.GetPool().Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
