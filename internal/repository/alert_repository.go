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

const alertColumns = "id, event_id, market_id, selection, user_id, odds, platform, probability, value_percentage, confidence, status, factors, external_bet_id, expires_at, created_at, updated_at"

// PostgresAlertRepository implements AlertRepository for PostgreSQL
type PostgresAlertRepository struct {
	db *database.DB
}

// NewPostgresAlertRepository creates a new alert repository
func NewPostgresAlertRepository(db *database.DB) AlertRepository {
	return &PostgresAlertRepository{db: db}
}

func scanAlert(row pgx.Row) (*models.ValueBetAlert, error) {
	a := &models.ValueBetAlert{}
	err := row.Scan(
		&a.ID, &a.EventID, &a.MarketID, &a.Selection, &a.UserID, &a.Odds, &a.Platform,
		&a.Probability, &a.ValuePercentage, &a.Confidence, &a.Status, &a.Factors,
		&a.ExternalBetID, &a.ExpiresAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an alert by its ID
func (r *PostgresAlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ValueBetAlert, error) {
	query := fmt.Sprintf("SELECT %s FROM value_bet_alerts WHERE id = $1", alertColumns)

	alert, err := scanAlert(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	return alert, nil
}

// GetActive retrieves the single ACTIVE alert for the natural key, if any
func (r *PostgresAlertRepository) GetActive(ctx context.Context, eventID, marketID uuid.UUID, selection string, userID *uuid.UUID) (*models.ValueBetAlert, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM value_bet_alerts
		WHERE event_id = $1 AND market_id = $2 AND selection = $3
		  AND user_id IS NOT DISTINCT FROM $4 AND status = $5
		LIMIT 1
	`, alertColumns)

	alert, err := scanAlert(r.db.GetPool().QueryRow(ctx, query, eventID, marketID, selection, userID, models.AlertActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active alert: %w", err)
	}

	return alert, nil
}

// UpsertActive creates an ACTIVE alert or, when one already exists for the
// natural key, updates its price, value, confidence, factors and expiry in
// place. Returns true when a new row was created.
func (r *PostgresAlertRepository) UpsertActive(ctx context.Context, alert *models.ValueBetAlert) (bool, error) {
	created := false
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		selectQuery := fmt.Sprintf(`
			SELECT %s FROM value_bet_alerts
			WHERE event_id = $1 AND market_id = $2 AND selection = $3
			  AND user_id IS NOT DISTINCT FROM $4 AND status = $5
			FOR UPDATE
		`, alertColumns)

		existing, err := scanAlert(tx.QueryRow(ctx, selectQuery,
			alert.EventID, alert.MarketID, alert.Selection, alert.UserID, models.AlertActive))
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to lock active alert: %w", err)
		}

		now := time.Now()
		if err == nil {
			update := `
				UPDATE value_bet_alerts
				SET odds = $2, platform = $3, probability = $4, value_percentage = $5,
				    confidence = $6, factors = $7, expires_at = $8, updated_at = $9
				WHERE id = $1
			`
			_, err := tx.Exec(ctx, update,
				existing.ID, alert.Odds, alert.Platform, alert.Probability, alert.ValuePercentage,
				alert.Confidence, alert.Factors, alert.ExpiresAt, now,
			)
			if err != nil {
				return fmt.Errorf("failed to refresh active alert: %w", err)
			}
			alert.ID = existing.ID
			alert.CreatedAt = existing.CreatedAt
			alert.UpdatedAt = now
			return nil
		}

		insert := `
			INSERT INTO value_bet_alerts (id, event_id, market_id, selection, user_id, odds, platform, probability, value_percentage, confidence, status, factors, expires_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`
		alert.CreatedAt = now
		alert.UpdatedAt = now
		alert.Status = models.AlertActive
		_, err = tx.Exec(ctx, insert,
			alert.ID, alert.EventID, alert.MarketID, alert.Selection, alert.UserID,
			alert.Odds, alert.Platform, alert.Probability, alert.ValuePercentage,
			alert.Confidence, alert.Status, alert.Factors, alert.ExpiresAt,
			alert.CreatedAt, alert.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert alert: %w", err)
		}
		created = true
		return nil
	})

	return created, err
}

// Update persists an alert's mutable fields, including status transitions
func (r *PostgresAlertRepository) Update(ctx context.Context, alert *models.ValueBetAlert) error {
	query := `
		UPDATE value_bet_alerts
		SET odds = $2, platform = $3, probability = $4, value_percentage = $5,
		    confidence = $6, status = $7, factors = $8, external_bet_id = $9,
		    expires_at = $10, updated_at = $11
		WHERE id = $1
	`

	alert.UpdatedAt = time.Now()
	tag, err := r.db.GetPool().Exec(ctx, query,
		alert.ID, alert.Odds, alert.Platform, alert.Probability, alert.ValuePercentage,
		alert.Confidence, alert.Status, alert.Factors, alert.ExternalBetID,
		alert.ExpiresAt, alert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ExpireOlderThan transitions past-expiry ACTIVE alerts to EXPIRED and
// returns how many rows changed
func (r *PostgresAlertRepository) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE value_bet_alerts
		SET status = $1, updated_at = $2
		WHERE status = $3 AND expires_at < $4
	`

	tag, err := r.db.GetPool().Exec(ctx, query, models.AlertExpired, time.Now(), models.AlertActive, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to expire alerts: %w", err)
	}

	return tag.RowsAffected(), nil
}

// GetActiveByEvent retrieves all ACTIVE alerts for an event
func (r *PostgresAlertRepository) GetActiveByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.ValueBetAlert, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM value_bet_alerts
		WHERE event_id = $1 AND status = $2
		ORDER BY value_percentage DESC
	`, alertColumns)

	rows, err := r.db.GetPool().Query(ctx, query, eventID, models.AlertActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query event alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.ValueBetAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}

// GetByUser retrieves a user's alerts in the given status, best value first
func (r *PostgresAlertRepository) GetByUser(ctx context.Context, userID uuid.UUID, status models.AlertStatus, limit int) ([]*models.ValueBetAlert, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM value_bet_alerts
		WHERE user_id = $1 AND status = $2
		ORDER BY value_percentage DESC
		LIMIT $3
	`, alertColumns)

	rows, err := r.db.GetPool().Query(ctx, query, userID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query user alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.ValueBetAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}
