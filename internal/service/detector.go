package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsedge/internal/logger"
	"github.com/yourusername/oddsedge/internal/metrics"
	"github.com/yourusername/oddsedge/internal/models"
	"github.com/yourusername/oddsedge/internal/repository"
)

// ValueBetCandidate is one qualifying mispriced selection
type ValueBetCandidate struct {
	EventID       uuid.UUID `json:"event_id"`
	MarketID      uuid.UUID `json:"market_id"`
	SportKey      string    `json:"sport_key"`
	HomeTeam      string    `json:"home_team"`
	AwayTeam      string    `json:"away_team"`
	StartTime     time.Time `json:"start_time"`
	Selection     string    `json:"selection"`
	Probability   float64   `json:"probability"`
	Confidence    float64   `json:"confidence"`
	BestPrice     float64   `json:"best_price"`
	Platform      string    `json:"platform"`
	RawValue      float64   `json:"raw_value"`
	AdjustedValue float64   `json:"adjusted_value"`
}

// DetectionOptions narrows a value-bet scan. Filters apply before ranking;
// filtered-out candidates never reach alert creation.
type DetectionOptions struct {
	MinValue         float64
	MinConfidence    float64
	MinOdds          float64
	MaxOdds          float64
	Platforms        []string
	MaxEvents        int
	AutoCreateAlerts bool
	UserID           *uuid.UUID
}

// DetectionResult carries the ranked candidates plus per-event failures that
// were contained during the scan
type DetectionResult struct {
	Candidates []ValueBetCandidate `json:"candidates"`
	Errors     int                 `json:"errors"`
}

// ValueBetDetector compares stored predictions against best available prices
// and owns value-bet alert creation
type ValueBetDetector struct {
	sportRepo      repository.SportRepository
	eventRepo      repository.EventRepository
	marketRepo     repository.MarketRepository
	oddsRepo       repository.OddsRepository
	predictionRepo repository.PredictionRepository
	alertRepo      repository.AlertRepository
	minValue       float64
	logger         *logrus.Entry
	alertLog       *logger.AlertLogger
}

// NewValueBetDetector creates a detector. minValue is the default qualification
// threshold when the caller supplies none.
func NewValueBetDetector(
	repos *repository.Repositories,
	minValue float64,
	baseLogger *logrus.Logger,
) *ValueBetDetector {
	if minValue <= 0 {
		minValue = defaultMargin
	}
	return &ValueBetDetector{
		sportRepo:      repos.Sport,
		eventRepo:      repos.Event,
		marketRepo:     repos.Market,
		oddsRepo:       repos.Odds,
		predictionRepo: repos.Prediction,
		alertRepo:      repos.Alert,
		minValue:       minValue,
		logger:         baseLogger.WithField("component", "detector"),
		alertLog:       logger.NewAlertLogger(baseLogger),
	}
}

// EvaluateValue computes the raw and confidence-discounted value of backing a
// probability at a price. estimatedMargin defaults when non-positive.
func EvaluateValue(probability, bestPrice, confidence, estimatedMargin float64) (rawValue, adjustedValue float64) {
	if estimatedMargin <= 0 {
		estimatedMargin = defaultMargin
	}
	rawValue = probability*bestPrice - 1
	adjustedValue = rawValue*confidence - estimatedMargin*(1-confidence)
	return rawValue, adjustedValue
}

// DetectForSport scans a sport's upcoming events for value bets
func (d *ValueBetDetector) DetectForSport(ctx context.Context, sportKey string, window time.Duration, opts DetectionOptions) (*DetectionResult, error) {
	if sportKey == "" {
		return nil, models.ErrSportKeyRequired
	}

	sport, err := d.sportRepo.GetByKey(ctx, sportKey)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sport %s: %w", sportKey, err)
	}

	limit := opts.MaxEvents
	if limit <= 0 {
		limit = 20
	}
	events, err := d.eventRepo.GetUpcoming(ctx, sport.ID, window, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}

	ids := make([]uuid.UUID, len(events))
	for i, event := range events {
		ids[i] = event.ID
	}
	return d.DetectForEvents(ctx, ids, opts)
}

// DetectForEvents scans the given events for value bets. Failures on a single
// event are counted, not fatal.
func (d *ValueBetDetector) DetectForEvents(ctx context.Context, eventIDs []uuid.UUID, opts DetectionOptions) (*DetectionResult, error) {
	start := time.Now()
	result := &DetectionResult{}

	minValue := opts.MinValue
	if minValue <= 0 {
		minValue = d.minValue
	}

	for _, eventID := range eventIDs {
		candidates, err := d.detectForEvent(ctx, eventID, minValue, opts)
		if err != nil {
			d.logger.WithFields(logrus.Fields{
				"event_id": eventID,
				"error":    err.Error(),
			}).Warn("Event scan failed, continuing")
			result.Errors++
			continue
		}
		result.Candidates = append(result.Candidates, candidates...)
	}

	sort.Slice(result.Candidates, func(i, j int) bool {
		return result.Candidates[i].AdjustedValue > result.Candidates[j].AdjustedValue
	})

	if opts.AutoCreateAlerts {
		for i := range result.Candidates {
			if err := d.upsertAlert(ctx, &result.Candidates[i], opts.UserID); err != nil {
				d.logger.WithError(err).Warn("Failed to upsert alert")
				result.Errors++
			}
		}
	}

	metrics.ValueScanDuration.Observe(time.Since(start).Seconds())
	metrics.ValueBetsDetectedTotal.Add(float64(len(result.Candidates)))

	return result, nil
}

func (d *ValueBetDetector) detectForEvent(ctx context.Context, eventID uuid.UUID, minValue float64, opts DetectionOptions) ([]ValueBetCandidate, error) {
	event, err := d.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if !event.IsUpcoming() {
		return nil, nil
	}

	sport, err := d.sportRepo.GetByID(ctx, event.SportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sport: %w", err)
	}

	markets, err := d.marketRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load markets: %w", err)
	}

	var candidates []ValueBetCandidate
	for _, market := range markets {
		if !market.IsActive {
			continue
		}

		predictions, err := d.predictionRepo.GetCurrentByMarket(ctx, eventID, market.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load predictions: %w", err)
		}

		for _, pred := range predictions {
			candidate, ok, err := d.evaluate(ctx, event, sport, market, pred, minValue, opts)
			if err != nil {
				return nil, err
			}
			if ok {
				candidates = append(candidates, candidate)
			}
		}
	}

	return candidates, nil
}

// evaluate scores one prediction against the best active price and applies the
// caller's filters
func (d *ValueBetDetector) evaluate(
	ctx context.Context,
	event *models.Event,
	sport *models.Sport,
	market *models.Market,
	pred *models.Prediction,
	minValue float64,
	opts DetectionOptions,
) (ValueBetCandidate, bool, error) {
	quotes, err := d.oddsRepo.GetActiveBySelection(ctx, market.ID, pred.Selection)
	if err != nil {
		return ValueBetCandidate{}, false, fmt.Errorf("failed to load active odds: %w", err)
	}

	bestPrice, bestSource := bestQuote(quotes, opts.Platforms)
	if bestPrice <= 1 {
		return ValueBetCandidate{}, false, nil
	}

	if opts.MinConfidence > 0 && pred.Confidence < opts.MinConfidence {
		return ValueBetCandidate{}, false, nil
	}
	if opts.MinOdds > 0 && bestPrice < opts.MinOdds {
		return ValueBetCandidate{}, false, nil
	}
	if opts.MaxOdds > 0 && bestPrice > opts.MaxOdds {
		return ValueBetCandidate{}, false, nil
	}

	margin := defaultMargin
	if v, err := pred.GetFactor("estimatedMargin"); err == nil {
		if f, ok := v.(float64); ok && f > 0 {
			margin = f
		}
	}

	rawValue, adjustedValue := EvaluateValue(pred.Probability, bestPrice, pred.Confidence, margin)

	// Boundary is inclusive: exactly minValue qualifies
	if adjustedValue < minValue {
		return ValueBetCandidate{}, false, nil
	}

	return ValueBetCandidate{
		EventID:       event.ID,
		MarketID:      market.ID,
		SportKey:      sport.Key,
		HomeTeam:      event.HomeTeam,
		AwayTeam:      event.AwayTeam,
		StartTime:     event.StartTime,
		Selection:     pred.Selection,
		Probability:   pred.Probability,
		Confidence:    pred.Confidence,
		BestPrice:     bestPrice,
		Platform:      bestSource,
		RawValue:      rawValue,
		AdjustedValue: adjustedValue,
	}, true, nil
}

// upsertAlert creates or refreshes the ACTIVE alert for a candidate. Alerts
// expire at event start at the latest.
func (d *ValueBetDetector) upsertAlert(ctx context.Context, c *ValueBetCandidate, userID *uuid.UUID) error {
	existing, err := d.alertRepo.GetActive(ctx, c.EventID, c.MarketID, c.Selection, userID)
	var previousValue float64
	if err == nil {
		previousValue = existing.ValuePercentage
	}

	alert := &models.ValueBetAlert{
		ID:              uuid.New(),
		EventID:         c.EventID,
		MarketID:        c.MarketID,
		Selection:       c.Selection,
		UserID:          userID,
		Odds:            c.BestPrice,
		Platform:        c.Platform,
		Probability:     c.Probability,
		ValuePercentage: c.AdjustedValue * 100,
		Confidence:      c.Confidence,
		Status:          models.AlertActive,
		ExpiresAt:       c.StartTime,
	}

	created, err := d.alertRepo.UpsertActive(ctx, alert)
	if err != nil {
		return fmt.Errorf("failed to upsert alert: %w", err)
	}

	if created {
		metrics.AlertsCreatedTotal.Inc()
		d.alertLog.LogAlertCreated(alert.ID.String(), c.EventID.String(), c.Selection,
			c.Platform, c.BestPrice, alert.ValuePercentage, c.Confidence, alert.ExpiresAt)
	} else {
		metrics.AlertsRefreshedTotal.Inc()
		d.alertLog.LogAlertRefreshed(alert.ID.String(), c.EventID.String(), c.Selection,
			previousValue, alert.ValuePercentage)
	}

	return nil
}

// bestQuote returns the highest active price, restricted to the preferred
// platforms when any are given
func bestQuote(quotes []*models.Odds, platforms []string) (price float64, source string) {
	allowed := func(s string) bool {
		if len(platforms) == 0 {
			return true
		}
		for _, p := range platforms {
			if p == s {
				return true
			}
		}
		return false
	}

	for _, q := range quotes {
		if !q.IsActive || !allowed(q.Source) {
			continue
		}
		if q.Decimal > price {
			price = q.Decimal
			source = q.Source
		}
	}
	return price, source
}
