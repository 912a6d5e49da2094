package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/oddsedge/internal/database"
	"github.com/yourusername/oddsedge/internal/models"
)

const predictionColumns = "id, event_id, market_id, selection, probability, confidence, model_version, factors, was_correct, predicted_at"

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

func scanPrediction(row pgx.Row) (*models.Prediction, error) {
	p := &models.Prediction{}
	err := row.Scan(
		&p.ID, &p.EventID, &p.MarketID, &p.Selection, &p.Probability,
		&p.Confidence, &p.ModelVersion, &p.Factors, &p.WasCorrect, &p.PredictedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Insert stores a new prediction version. Stored versions are never edited.
func (r *PostgresPredictionRepository) Insert(ctx context.Context, prediction *models.Prediction) error {
	query := `
		INSERT INTO predictions (id, event_id, market_id, selection, probability, confidence, model_version, factors, was_correct, predicted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		prediction.ID, prediction.EventID, prediction.MarketID, prediction.Selection,
		prediction.Probability, prediction.Confidence, prediction.ModelVersion,
		prediction.Factors, prediction.WasCorrect, prediction.PredictedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}

	return nil
}

// GetCurrent retrieves the latest prediction version for one selection
func (r *PostgresPredictionRepository) GetCurrent(ctx context.Context, eventID, marketID uuid.UUID, selection string) (*models.Prediction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM predictions
		WHERE event_id = $1 AND market_id = $2 AND selection = $3
		ORDER BY predicted_at DESC
		LIMIT 1
	`, predictionColumns)

	p, err := scanPrediction(r.db.GetPool().QueryRow(ctx, query, eventID, marketID, selection))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current prediction: %w", err)
	}

	return p, nil
}

// GetCurrentByMarket retrieves the latest prediction version per selection of
// one market
func (r *PostgresPredictionRepository) GetCurrentByMarket(ctx context.Context, eventID, marketID uuid.UUID) ([]*models.Prediction, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT ON (selection) %s
		FROM predictions
		WHERE event_id = $1 AND market_id = $2
		ORDER BY selection, predicted_at DESC
	`, predictionColumns)

	rows, err := r.db.GetPool().Query(ctx, query, eventID, marketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query market predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

// GetByEventID retrieves all prediction versions for an event
func (r *PostgresPredictionRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) ([]*models.Prediction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM predictions
		WHERE event_id = $1
		ORDER BY predicted_at DESC
	`, predictionColumns)

	rows, err := r.db.GetPool().Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query event predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

// MarkOutcome fills in the outcome-correctness flag once the event resolves.
// This is the only post-insert mutation predictions allow.
func (r *PostgresPredictionRepository) MarkOutcome(ctx context.Context, id uuid.UUID, wasCorrect bool) error {
	query := `UPDATE predictions SET was_correct = $2 WHERE id = $1`

	tag, err := r.db.GetPool().Exec(ctx, query, id, wasCorrect)
	if err != nil {
		return fmt.Errorf("failed to mark prediction outcome: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
