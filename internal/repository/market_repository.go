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

// PostgresMarketRepository implements MarketRepository for PostgreSQL
type PostgresMarketRepository struct {
	db *database.DB
}

// NewPostgresMarketRepository creates a new market repository
func NewPostgresMarketRepository(db *database.DB) MarketRepository {
	return &PostgresMarketRepository{db: db}
}

// Create inserts a new market
func (m *PostgresMarketRepository) Create(ctx context.Context, market *models.Market) error {
	query := `
		INSERT INTO markets (id, event_id, type, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()
	market.CreatedAt = now
	market.UpdatedAt = now

	_, err := m.db.GetPool().Exec(ctx, query,
		market.ID, market.EventID, market.Type, market.IsActive, market.CreatedAt, market.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert market: %w", err)
	}

	return nil
}

// GetByID retrieves a market by its ID
func (m *PostgresMarketRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	query := `
		SELECT id, event_id, type, is_active, created_at, updated_at
		FROM markets
		WHERE id = $1
	`

	market := &models.Market{}
	err := m.db.GetPool().QueryRow(ctx, query, id).Scan(
		&market.ID, &market.EventID, &market.Type, &market.IsActive, &market.CreatedAt, &market.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get market: %w", err)
	}

	return market, nil
}

// GetOrCreate finds a market for the event and type, creating it lazily on
// first observation of odds for that type
func (m *PostgresMarketRepository) GetOrCreate(ctx context.Context, eventID uuid.UUID, marketType string) (*models.Market, error) {
	query := `
		SELECT id, event_id, type, is_active, created_at, updated_at
		FROM markets
		WHERE event_id = $1 AND type = $2
	`

	market := &models.Market{}
	err := m.db.GetPool().QueryRow(ctx, query, eventID, marketType).Scan(
		&market.ID, &market.EventID, &market.Type, &market.IsActive, &market.CreatedAt, &market.UpdatedAt,
	)
	if err == nil {
		return market, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get market: %w", err)
	}

	market = &models.Market{
		ID:       uuid.New(),
		EventID:  eventID,
		Type:     marketType,
		IsActive: true,
	}
	if err := m.Create(ctx, market); err != nil {
		return nil, err
	}

	return market, nil
}

// GetByEventID retrieves all markets for an event
func (m *PostgresMarketRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) ([]*models.Market, error) {
	query := `
		SELECT id, event_id, type, is_active, created_at, updated_at
		FROM markets
		WHERE event_id = $1
		ORDER BY type ASC
	`

	rows, err := m.db.GetPool().Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query markets: %w", err)
	}
	defer rows.Close()

	var markets []*models.Market
	for rows.Next() {
		market := &models.Market{}
		err := rows.Scan(
			&market.ID, &market.EventID, &market.Type, &market.IsActive, &market.CreatedAt, &market.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market: %w", err)
		}
		markets = append(markets, market)
	}

	return markets, rows.Err()
}
