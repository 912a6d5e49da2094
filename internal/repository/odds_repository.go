package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/oddsedge/internal/database"
	"github.com/yourusername/oddsedge/internal/models"
)

const oddsColumns = "id, market_id, selection, decimal, source, probability, is_active, created_at, updated_at"

// PostgresOddsRepository implements OddsRepository for PostgreSQL
type PostgresOddsRepository struct {
	db *database.DB
}

// NewPostgresOddsRepository creates a new odds repository
func NewPostgresOddsRepository(db *database.DB) OddsRepository {
	return &PostgresOddsRepository{db: db}
}

func scanOdds(row pgx.Row) (*models.Odds, error) {
	odds := &models.Odds{}
	err := row.Scan(
		&odds.ID, &odds.MarketID, &odds.Selection, &odds.Decimal, &odds.Source,
		&odds.Probability, &odds.IsActive, &odds.CreatedAt, &odds.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return odds, nil
}

// Insert inserts a single odds row
func (o *PostgresOddsRepository) Insert(ctx context.Context, odds *models.Odds) error {
	query := `
		INSERT INTO odds (id, market_id, selection, decimal, source, probability, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now()
	odds.CreatedAt = now
	odds.UpdatedAt = now
	if odds.Probability == 0 && odds.Decimal > 0 {
		odds.Probability = 1.0 / odds.Decimal
	}

	_, err := o.db.GetPool().Exec(ctx, query,
		odds.ID, odds.MarketID, odds.Selection, odds.Decimal, odds.Source,
		odds.Probability, odds.IsActive, odds.CreatedAt, odds.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert odds: %w", err)
	}

	return nil
}

// GetActiveByMarket retrieves all active odds for a market
func (o *PostgresOddsRepository) GetActiveByMarket(ctx context.Context, marketID uuid.UUID) ([]*models.Odds, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM odds
		WHERE market_id = $1 AND is_active = true
		ORDER BY selection ASC, source ASC
	`, oddsColumns)

	rows, err := o.db.GetPool().Query(ctx, query, marketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active odds: %w", err)
	}
	defer rows.Close()

	var result []*models.Odds
	for rows.Next() {
		odds, err := scanOdds(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds: %w", err)
		}
		result = append(result, odds)
	}

	return result, rows.Err()
}

// GetActiveBySelection retrieves active odds for one selection of a market
func (o *PostgresOddsRepository) GetActiveBySelection(ctx context.Context, marketID uuid.UUID, selection string) ([]*models.Odds, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM odds
		WHERE market_id = $1 AND selection = $2 AND is_active = true
		ORDER BY source ASC
	`, oddsColumns)

	rows, err := o.db.GetPool().Query(ctx, query, marketID, selection)
	if err != nil {
		return nil, fmt.Errorf("failed to query selection odds: %w", err)
	}
	defer rows.Close()

	var result []*models.Odds
	for rows.Next() {
		odds, err := scanOdds(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds: %w", err)
		}
		result = append(result, odds)
	}

	return result, rows.Err()
}

// Supersede deactivates the current active quote for (market, selection,
// source) and inserts the replacement in a single transaction
func (o *PostgresOddsRepository) Supersede(ctx context.Context, marketID uuid.UUID, selection, source string, replacement *models.Odds) error {
	return o.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		deactivate := `
			UPDATE odds SET is_active = false, updated_at = $4
			WHERE market_id = $1 AND selection = $2 AND source = $3 AND is_active = true
		`
		now := time.Now()
		if _, err := tx.Exec(ctx, deactivate, marketID, selection, source, now); err != nil {
			return fmt.Errorf("failed to deactivate superseded odds: %w", err)
		}

		replacement.CreatedAt = now
		replacement.UpdatedAt = now
		if replacement.Probability == 0 && replacement.Decimal > 0 {
			replacement.Probability = 1.0 / replacement.Decimal
		}

		insert := `
			INSERT INTO odds (id, market_id, selection, decimal, source, probability, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		_, err := tx.Exec(ctx, insert,
			replacement.ID, replacement.MarketID, replacement.Selection, replacement.Decimal,
			replacement.Source, replacement.Probability, replacement.IsActive,
			replacement.CreatedAt, replacement.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert replacement odds: %w", err)
		}

		return nil
	})
}

// AppendHistory appends movement rows to the immutable odds history log
// using high-performance batch insert
func (o *PostgresOddsRepository) AppendHistory(ctx context.Context, history []*models.OddsHistory) error {
	if len(history) == 0 {
		return nil
	}

	columns := []string{"time", "event_id", "market_id", "selection", "decimal", "source"}

	copyFromSource := make([][]interface{}, len(history))
	for i, h := range history {
		copyFromSource[i] = []interface{}{
			h.Time, h.EventID, h.MarketID, h.Selection, h.Decimal, h.Source,
		}
	}

	count, err := o.db.GetPool().CopyFrom(ctx, pgx.Identifier{"odds_history"}, columns, pgx.CopyFromRows(copyFromSource))
	if err != nil {
		return fmt.Errorf("failed to batch insert odds history: %w", err)
	}

	if count != int64(len(history)) {
		return fmt.Errorf("inserted %d history rows, expected %d", count, len(history))
	}

	return nil
}

// GetHistory retrieves odds movements for one selection within a time range
func (o *PostgresOddsRepository) GetHistory(ctx context.Context, eventID uuid.UUID, selection string, start, end time.Time) ([]*models.OddsHistory, error) {
	query := `
		SELECT time, event_id, market_id, selection, decimal, source
		FROM odds_history
		WHERE event_id = $1 AND selection = $2 AND time >= $3 AND time <= $4
		ORDER BY time ASC
	`

	rows, err := o.db.GetPool().Query(ctx, query, eventID, selection, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds history: %w", err)
	}
	defer rows.Close()

	var history []*models.OddsHistory
	for rows.Next() {
		h := &models.OddsHistory{}
		err := rows.Scan(&h.Time, &h.EventID, &h.MarketID, &h.Selection, &h.Decimal, &h.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds history: %w", err)
		}
		history = append(history, h)
	}

	return history, rows.Err()
}
