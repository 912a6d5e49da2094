package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsedge/internal/config"
	"github.com/yourusername/oddsedge/internal/features"
	"github.com/yourusername/oddsedge/internal/logger"
	"github.com/yourusername/oddsedge/internal/metrics"
	"github.com/yourusername/oddsedge/internal/models"
	"github.com/yourusername/oddsedge/internal/repository"
)

// Events this close to starting use a tighter drift threshold
const nearStartWindow = 12 * time.Hour

// driftThresholdFloor is the tightest threshold applied near event start
const driftThresholdFloor = 0.03

// RecomputeResult summarizes one recompute cycle
type RecomputeResult struct {
	Generated int `json:"generated"`
	Updated   int `json:"updated"`
	Errors    int `json:"errors"`
}

// RecomputeScheduler walks the sport/event/market catalog and keeps stored
// predictions current. First computation always writes; refreshes only happen
// when the market has drifted past the threshold, so near-stationary markets
// produce no churn.
type RecomputeScheduler struct {
	aggregator *OddsAggregator
	normalizer *ProbabilityNormalizer
	features   features.Provider

	sportRepo      repository.SportRepository
	eventRepo      repository.EventRepository
	marketRepo     repository.MarketRepository
	oddsRepo       repository.OddsRepository
	predictionRepo repository.PredictionRepository

	cfg config.PipelineConfig
	log *logger.PipelineLogger
}

// NewRecomputeScheduler creates the scheduler over its collaborators
func NewRecomputeScheduler(
	aggregator *OddsAggregator,
	normalizer *ProbabilityNormalizer,
	featureProvider features.Provider,
	repos *repository.Repositories,
	cfg config.PipelineConfig,
	baseLogger *logrus.Logger,
) *RecomputeScheduler {
	return &RecomputeScheduler{
		aggregator:     aggregator,
		normalizer:     normalizer,
		features:       featureProvider,
		sportRepo:      repos.Sport,
		eventRepo:      repos.Event,
		marketRepo:     repos.Market,
		oddsRepo:       repos.Odds,
		predictionRepo: repos.Prediction,
		cfg:            cfg,
		log:            logger.NewPipelineLogger(baseLogger),
	}
}

// RunCycle recomputes predictions for events starting within the window.
// It is idempotent: a second run over an unchanged market writes nothing.
func (s *RecomputeScheduler) RunCycle(ctx context.Context, window time.Duration) (*RecomputeResult, error) {
	start := time.Now()
	result := &RecomputeResult{}
	var mu sync.Mutex

	sports, err := s.sportRepo.GetActive(ctx, s.cfg.MaxSports)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sports: %w", err)
	}
	metrics.ActiveSports.Set(float64(len(sports)))

	for _, sport := range sports {
		events, err := s.eventRepo.GetUpcoming(ctx, sport.ID, window, s.cfg.MaxEventsPerSport)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"sport_key": sport.Key,
				"error":     err.Error(),
			}).Warn("Failed to list upcoming events, skipping sport")
			mu.Lock()
			result.Errors++
			mu.Unlock()
			continue
		}

		s.processBatches(ctx, sport, events, result, &mu)
	}

	duration := time.Since(start)
	metrics.RecordCycleDuration(duration.Seconds())
	metrics.LastCycleErrors.Set(float64(result.Errors))
	s.log.LogCycleCompleted(len(sports), result.Generated, result.Updated, result.Errors, float64(duration.Milliseconds()))

	return result, nil
}

// processBatches partitions events into fixed-size batches and runs a bounded
// number of them concurrently, pausing between groups to stay inside provider
// rate limits
func (s *RecomputeScheduler) processBatches(ctx context.Context, sport *models.Sport, events []*models.Event, result *RecomputeResult, mu *sync.Mutex) {
	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}
	concurrency := s.cfg.BatchConcurrency
	if concurrency <= 0 {
		concurrency = 3
	}

	var batches [][]*models.Event
	for i := 0; i < len(events); i += batchSize {
		end := i + batchSize
		if end > len(events) {
			end = len(events)
		}
		batches = append(batches, events[i:end])
	}

	for group := 0; group < len(batches); group += concurrency {
		groupEnd := group + concurrency
		if groupEnd > len(batches) {
			groupEnd = len(batches)
		}

		var wg sync.WaitGroup
		for _, batch := range batches[group:groupEnd] {
			wg.Add(1)
			go func(batch []*models.Event) {
				defer wg.Done()
				for _, event := range batch {
					if ctx.Err() != nil {
						return
					}
					if err := s.processEvent(ctx, sport, event, result, mu); err != nil {
						s.log.LogUnitFailure(event.ID.String(), err)
						metrics.RecordRecomputeError()
						mu.Lock()
						result.Errors++
						mu.Unlock()
					}
				}
			}(batch)
		}
		wg.Wait()

		if groupEnd < len(batches) && s.cfg.BatchPause() > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.cfg.BatchPause()):
			}
		}
	}
}

// processEvent recomputes one event's markets. Aggregate → normalize → store
// is strictly sequential within the unit.
func (s *RecomputeScheduler) processEvent(ctx context.Context, sport *models.Sport, event *models.Event, result *RecomputeResult, mu *sync.Mutex) error {
	markets, err := s.marketRepo.GetByEventID(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("failed to list markets: %w", err)
	}

	for _, market := range markets {
		if !market.IsActive {
			continue
		}

		odds, err := s.oddsRepo.GetActiveByMarket(ctx, market.ID)
		if err != nil {
			return fmt.Errorf("failed to load active odds: %w", err)
		}

		agg, err := s.aggregator.Aggregate(odds)
		if errors.Is(err, models.ErrInsufficientSelections) {
			s.log.LogMarketSkipped(event.ID.String(), market.ID.String(), "insufficient priced selections")
			metrics.RecordSkip("insufficient_selections")
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to aggregate market: %w", err)
		}

		snapshot := s.features.Snapshot(ctx, sport.Key, event, odds)

		predictions, err := s.normalizer.Normalize(agg, snapshot)
		if err != nil {
			return fmt.Errorf("failed to normalize market: %w", err)
		}

		for i := range predictions {
			generated, updated, err := s.storeIfDrifted(ctx, event, market, agg, &predictions[i])
			if err != nil {
				return err
			}
			mu.Lock()
			if generated {
				result.Generated++
			}
			if updated {
				result.Updated++
			}
			mu.Unlock()

			if generated || updated {
				metrics.PredictionConfidence.WithLabelValues(sport.Key).Set(predictions[i].Confidence)
			}
		}
	}

	return nil
}

// storeIfDrifted applies the drift hysteresis: the first prediction for a
// selection always writes; refreshes require the average price to have moved
// past the threshold relative to the stored factors snapshot.
func (s *RecomputeScheduler) storeIfDrifted(ctx context.Context, event *models.Event, market *models.Market, agg *MarketAggregate, pred *SelectionPrediction) (generated, updated bool, err error) {
	current, err := s.predictionRepo.GetCurrent(ctx, event.ID, market.ID, pred.Selection)
	isFirst := errors.Is(err, models.ErrNotFound)
	if err != nil && !isFirst {
		return false, false, fmt.Errorf("failed to load current prediction: %w", err)
	}

	if !isFirst {
		sel, ok := agg.Get(pred.Selection)
		if !ok {
			return false, false, nil
		}
		lastPrice := current.ImpliedPrice()
		newPrice := 1.0 / sel.MeanImplied

		if lastPrice > 0 {
			drift := math.Abs(newPrice-lastPrice) / lastPrice
			threshold := s.driftThreshold(event)
			if drift <= threshold {
				s.log.LogDriftSkip(event.ID.String(), pred.Selection, drift, threshold)
				metrics.RecordSkip("below_drift_threshold")
				return false, false, nil
			}
		}
	}

	if err := s.store(ctx, event.ID, market.ID, pred); err != nil {
		return false, false, err
	}

	s.log.LogPredictionStored(event.ID.String(), market.ID.String(), pred.Selection,
		pred.Probability, pred.Confidence, !isFirst)
	metrics.RecordPredictionStored(!isFirst)

	return isFirst, !isFirst, nil
}

// driftThreshold tightens as the event approaches: late line moves matter more
func (s *RecomputeScheduler) driftThreshold(event *models.Event) float64 {
	threshold := s.cfg.DriftThreshold
	if event.TimeToStart() < nearStartWindow {
		threshold = math.Max(driftThresholdFloor, threshold*0.6)
	}
	return threshold
}

func (s *RecomputeScheduler) store(ctx context.Context, eventID, marketID uuid.UUID, pred *SelectionPrediction) error {
	factors, err := pred.EncodeFactors()
	if err != nil {
		return err
	}

	prediction := &models.Prediction{
		ID:           uuid.New(),
		EventID:      eventID,
		MarketID:     marketID,
		Selection:    pred.Selection,
		Probability:  pred.Probability,
		Confidence:   pred.Confidence,
		ModelVersion: models.ModelVersion,
		Factors:      factors,
		PredictedAt:  time.Now(),
	}

	if err := s.predictionRepo.Insert(ctx, prediction); err != nil {
		return fmt.Errorf("failed to store prediction: %w", err)
	}

	return nil
}

// ActiveSportKeys lists the keys of the sports the scheduler covers
func (s *RecomputeScheduler) ActiveSportKeys(ctx context.Context) ([]string, error) {
	sports, err := s.sportRepo.GetActive(ctx, s.cfg.MaxSports)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sports: %w", err)
	}
	keys := make([]string, len(sports))
	for i, sport := range sports {
		keys[i] = sport.Key
	}
	return keys, nil
}

// ComputePrediction scores one selection from explicit prices, without
// touching stored predictions. Exposed for callers that want an ad-hoc
// probability rather than a full cycle.
func (s *RecomputeScheduler) ComputePrediction(ctx context.Context, sportKey string, event *models.Event, odds []*models.Odds, selection string) (*SelectionPrediction, error) {
	agg, err := s.aggregator.Aggregate(odds)
	if err != nil {
		return nil, err
	}

	snapshot := s.features.Snapshot(ctx, sportKey, event, odds)
	predictions, err := s.normalizer.Normalize(agg, snapshot)
	if err != nil {
		return nil, err
	}

	for i := range predictions {
		if predictions[i].Selection == selection {
			return &predictions[i], nil
		}
	}
	return nil, models.ErrNoActiveOdds
}
