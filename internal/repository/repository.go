package repository

import (
	"fmt"

	"github.com/yourusername/oddsedge/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Sport      SportRepository
	Event      EventRepository
	Market     MarketRepository
	Odds       OddsRepository
	Prediction PredictionRepository
	Alert      AlertRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Sport:      NewPostgresSportRepository(db),
		Event:      NewPostgresEventRepository(db),
		Market:     NewPostgresMarketRepository(db),
		Odds:       NewPostgresOddsRepository(db),
		Prediction: NewPostgresPredictionRepository(db),
		Alert:      NewPostgresAlertRepository(db),
	}, nil
}
