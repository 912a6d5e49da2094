package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/oddsedge/internal/config"
	"github.com/yourusername/oddsedge/internal/logger"
	"github.com/yourusername/oddsedge/internal/models"
	"github.com/yourusername/oddsedge/internal/repository"
)

func driftScheduler(threshold float64) *RecomputeScheduler {
	return &RecomputeScheduler{
		cfg: config.PipelineConfig{DriftThreshold: threshold},
	}
}

func eventStartingIn(d time.Duration) *models.Event {
	return &models.Event{StartTime: time.Now().Add(d)}
}

func TestDriftThresholdFarFromStart(t *testing.T) {
	scheduler := driftScheduler(0.05)
	event := eventStartingIn(36 * time.Hour)

	assert.Equal(t, 0.05, scheduler.driftThreshold(event))
}

func TestDriftThresholdTightensNearStart(t *testing.T) {
	scheduler := driftScheduler(0.05)
	event := eventStartingIn(3 * time.Hour)

	// 0.05 * 0.6 = 0.03, at the floor
	assert.InDelta(t, 0.03, scheduler.driftThreshold(event), 1e-9)
}

func TestDriftThresholdFloorNearStart(t *testing.T) {
	// A tight configured threshold never drops below the floor
	scheduler := driftScheduler(0.04)
	event := eventStartingIn(1 * time.Hour)

	assert.InDelta(t, 0.03, scheduler.driftThreshold(event), 1e-9)
}

type driftPredictionRepo struct {
	repository.PredictionRepository
	current  *models.Prediction
	inserted int
}

func (r *driftPredictionRepo) GetCurrent(ctx context.Context, eventID, marketID uuid.UUID, selection string) (*models.Prediction, error) {
	if r.current == nil {
		return nil, models.ErrNotFound
	}
	return r.current, nil
}

func (r *driftPredictionRepo) Insert(ctx context.Context, prediction *models.Prediction) error {
	r.current = prediction
	r.inserted++
	return nil
}

func driftRecomputer(repo *driftPredictionRepo, threshold float64) *RecomputeScheduler {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return &RecomputeScheduler{
		predictionRepo: repo,
		cfg:            config.PipelineConfig{DriftThreshold: threshold},
		log:            logger.NewPipelineLogger(log),
	}
}

func homeAggregate(price float64) *MarketAggregate {
	return &MarketAggregate{Selections: []SelectionAggregate{{
		Selection:   models.SelectionHome,
		MeanImplied: 1 / price,
	}}}
}

func homePrediction(price float64) *SelectionPrediction {
	return &SelectionPrediction{
		Selection:   models.SelectionHome,
		Probability: 0.47,
		Confidence:  0.6,
		Factors:     PredictionFactors{MarketAverage: 1 / price},
	}
}

func TestStoreIfDriftedHysteresis(t *testing.T) {
	repo := &driftPredictionRepo{}
	scheduler := driftRecomputer(repo, 0.05)
	event := eventStartingIn(36 * time.Hour)
	market := &models.Market{ID: uuid.New(), Type: models.MarketMatchWinner}
	ctx := context.Background()

	// First computation always writes
	generated, updated, err := scheduler.storeIfDrifted(ctx, event, market, homeAggregate(2.00), homePrediction(2.00))
	require.NoError(t, err)
	assert.True(t, generated)
	assert.False(t, updated)
	assert.Equal(t, 1, repo.inserted)

	// A 2% move over the stored price 2.00 stays below the threshold: no write
	generated, updated, err = scheduler.storeIfDrifted(ctx, event, market, homeAggregate(2.04), homePrediction(2.04))
	require.NoError(t, err)
	assert.False(t, generated)
	assert.False(t, updated)
	assert.Equal(t, 1, repo.inserted)

	// Exactly at the threshold the market has not drifted past it: still a skip
	generated, updated, err = scheduler.storeIfDrifted(ctx, event, market, homeAggregate(2.10), homePrediction(2.10))
	require.NoError(t, err)
	assert.False(t, generated)
	assert.False(t, updated)
	assert.Equal(t, 1, repo.inserted)

	// A 6% move exceeds it: a fresh version is written
	generated, updated, err = scheduler.storeIfDrifted(ctx, event, market, homeAggregate(2.12), homePrediction(2.12))
	require.NoError(t, err)
	assert.False(t, generated)
	assert.True(t, updated)
	assert.Equal(t, 2, repo.inserted)

	// The stored factors round-trip: drift now measures against the new price
	assert.InDelta(t, 2.12, repo.current.ImpliedPrice(), 1e-6)
}

func TestStoreIfDriftedTightensNearStart(t *testing.T) {
	repo := &driftPredictionRepo{}
	scheduler := driftRecomputer(repo, 0.05)
	market := &models.Market{ID: uuid.New(), Type: models.MarketMatchWinner}
	ctx := context.Background()

	_, _, err := scheduler.storeIfDrifted(ctx, eventStartingIn(36*time.Hour), market, homeAggregate(2.00), homePrediction(2.00))
	require.NoError(t, err)

	// A 4% move sits inside the far threshold but past the near-start 3% one
	_, updated, err := scheduler.storeIfDrifted(ctx, eventStartingIn(3*time.Hour), market, homeAggregate(2.08), homePrediction(2.08))
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, 2, repo.inserted)
}

func TestPredictionImpliedPriceRoundTrip(t *testing.T) {
	pred := SelectionPrediction{
		Selection:   models.SelectionHome,
		Probability: 0.45,
		Confidence:  0.7,
		Factors: PredictionFactors{
			MarketAverage: 0.4761905,
		},
	}

	raw, err := pred.EncodeFactors()
	assert.NoError(t, err)

	stored := &models.Prediction{Factors: raw}
	assert.InDelta(t, 1/0.4761905, stored.ImpliedPrice(), 1e-6)
}
