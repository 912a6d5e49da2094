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

// PostgresSportRepository implements SportRepository for PostgreSQL
type PostgresSportRepository struct {
	db *database.DB
}

// NewPostgresSportRepository creates a new sport repository
func NewPostgresSportRepository(db *database.DB) SportRepository {
	return &PostgresSportRepository{db: db}
}

// Create inserts a new sport
func (s *PostgresSportRepository) Create(ctx context.Context, sport *models.Sport) error {
	if sport.Key == "" {
		return models.ErrSportKeyRequired
	}

	query := `
		INSERT INTO sports (id, key, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()
	sport.CreatedAt = now
	sport.UpdatedAt = now

	_, err := s.db.GetPool().Exec(ctx, query,
		sport.ID, sport.Key, sport.Name, sport.IsActive, sport.CreatedAt, sport.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sport: %w", err)
	}

	return nil
}

// GetByID retrieves a sport by its ID
func (s *PostgresSportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Sport, error) {
	query := `
		SELECT id, key, name, is_active, created_at, updated_at
		FROM sports
		WHERE id = $1
	`

	sport := &models.Sport{}
	err := s.db.GetPool().QueryRow(ctx, query, id).Scan(
		&sport.ID, &sport.Key, &sport.Name, &sport.IsActive, &sport.CreatedAt, &sport.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sport: %w", err)
	}

	return sport, nil
}

// GetByKey retrieves a sport by its provider key
func (s *PostgresSportRepository) GetByKey(ctx context.Context, key string) (*models.Sport, error) {
	query := `
		SELECT id, key, name, is_active, created_at, updated_at
		FROM sports
		WHERE key = $1
	`

	sport := &models.Sport{}
	err := s.db.GetPool().QueryRow(ctx, query, key).Scan(
		&sport.ID, &sport.Key, &sport.Name, &sport.IsActive, &sport.CreatedAt, &sport.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sport by key: %w", err)
	}

	return sport, nil
}

// GetOrCreate finds a sport by key, creating it when missing
func (s *PostgresSportRepository) GetOrCreate(ctx context.Context, key, name string) (*models.Sport, error) {
	sport, err := s.GetByKey(ctx, key)
	if err == nil {
		return sport, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	sport = &models.Sport{
		ID:       uuid.New(),
		Key:      key,
		Name:     name,
		IsActive: true,
	}
	if err := s.Create(ctx, sport); err != nil {
		return nil, err
	}

	return sport, nil
}

// GetActive retrieves active sports up to the given limit
func (s *PostgresSportRepository) GetActive(ctx context.Context, limit int) ([]*models.Sport, error) {
	query := `
		SELECT id, key, name, is_active, created_at, updated_at
		FROM sports
		WHERE is_active = true
		ORDER BY key ASC
		LIMIT $1
	`

	rows, err := s.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query active sports: %w", err)
	}
	defer rows.Close()

	var sports []*models.Sport
	for rows.Next() {
		sport := &models.Sport{}
		err := rows.Scan(
			&sport.ID, &sport.Key, &sport.Name, &sport.IsActive, &sport.CreatedAt, &sport.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sport: %w", err)
		}
		sports = append(sports, sport)
	}

	return sports, rows.Err()
}

// Update updates a sport's mutable fields
func (s *PostgresSportRepository) Update(ctx context.Context, sport *models.Sport) error {
	query := `
		UPDATE sports
		SET name = $2, is_active = $3, updated_at = $4
		WHERE id = $1
	`

	sport.UpdatedAt = time.Now()
	tag, err := s.db.GetPool().Exec(ctx, query, sport.ID, sport.Name, sport.IsActive, sport.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update sport: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
