package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsedge/internal/datasource"
	"github.com/yourusername/oddsedge/internal/metrics"
	"github.com/yourusername/oddsedge/internal/models"
	"github.com/yourusername/oddsedge/internal/repository"
)

// Relative price-move thresholds. Moves above the history threshold are
// recorded; moves above the significant threshold additionally invalidate
// alerts whose edge they erased.
var (
	historyMoveThreshold     = decimal.NewFromFloat(0.01)
	significantMoveThreshold = decimal.NewFromFloat(0.05)
)

// OddsTrackResult summarizes one tracking pass over provider odds
type OddsTrackResult struct {
	Inserted         int `json:"inserted"`
	Superseded       int `json:"superseded"`
	SignificantMoves int `json:"significant_moves"`
	Errors           int `json:"errors"`
}

// OddsTracker ingests provider quotes into the local store, supersedes moved
// prices, appends the movement history and flags significant moves
type OddsTracker struct {
	eventRepo  repository.EventRepository
	marketRepo repository.MarketRepository
	oddsRepo   repository.OddsRepository
	alerts     *AlertService
	logger     *logrus.Entry
}

// NewOddsTracker creates an odds tracker. The alert service may be nil when
// invalidation on significant moves is not wanted.
func NewOddsTracker(
	eventRepo repository.EventRepository,
	marketRepo repository.MarketRepository,
	oddsRepo repository.OddsRepository,
	alerts *AlertService,
	baseLogger *logrus.Logger,
) *OddsTracker {
	return &OddsTracker{
		eventRepo:  eventRepo,
		marketRepo: marketRepo,
		oddsRepo:   oddsRepo,
		alerts:     alerts,
		logger:     baseLogger.WithField("component", "odds_tracker"),
	}
}

// Track processes one provider event's bookmaker quotes against the store.
// Per-quote failures are counted, never fatal.
func (t *OddsTracker) Track(ctx context.Context, pe datasource.EventOdds) (*OddsTrackResult, error) {
	event, err := t.eventRepo.GetByExternalID(ctx, pe.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve event %s: %w", pe.ID, err)
	}
	return t.TrackEvent(ctx, event, pe)
}

// TrackEvent is Track for callers that already hold the local event, such as
// the sync pass that just created or matched it
func (t *OddsTracker) TrackEvent(ctx context.Context, event *models.Event, pe datasource.EventOdds) (*OddsTrackResult, error) {
	result := &OddsTrackResult{}
	var history []*models.OddsHistory

	for _, bookmaker := range pe.Bookmakers {
		for _, marketOdds := range bookmaker.Markets {
			marketType, ok := marketTypeFor(marketOdds.Key)
			if !ok {
				continue
			}

			market, err := t.marketRepo.GetOrCreate(ctx, event.ID, marketType)
			if err != nil {
				t.logger.WithError(err).Warn("Failed to resolve market, continuing")
				result.Errors++
				continue
			}

			for _, outcome := range marketOdds.Outcomes {
				selection := selectionFor(pe, outcome.Name)
				rows, err := t.trackQuote(ctx, event, market, selection, bookmaker.Title, outcome.Price, result)
				if err != nil {
					t.logger.WithFields(logrus.Fields{
						"selection": selection,
						"source":    bookmaker.Title,
						"error":     err.Error(),
					}).Warn("Failed to track quote, continuing")
					result.Errors++
					continue
				}
				history = append(history, rows...)
			}
		}
	}

	if len(history) > 0 {
		if err := t.oddsRepo.AppendHistory(ctx, history); err != nil {
			return result, fmt.Errorf("failed to append odds history: %w", err)
		}
	}

	return result, nil
}

// trackQuote reconciles one bookmaker quote with the stored active odds
func (t *OddsTracker) trackQuote(
	ctx context.Context,
	event *models.Event,
	market *models.Market,
	selection, source string,
	price decimal.Decimal,
	result *OddsTrackResult,
) ([]*models.OddsHistory, error) {
	newPrice, _ := price.Float64()
	if newPrice <= 1 {
		return nil, nil
	}

	existing, err := t.activeQuote(ctx, market.ID, selection, source)
	if err != nil && !errors.Is(err, models.ErrNoActiveOdds) {
		return nil, err
	}

	if existing == nil {
		odds := &models.Odds{
			ID:        uuid.New(),
			MarketID:  market.ID,
			Selection: selection,
			Decimal:   newPrice,
			Source:    source,
			IsActive:  true,
		}
		if err := t.oddsRepo.Insert(ctx, odds); err != nil {
			return nil, err
		}
		result.Inserted++
		return []*models.OddsHistory{historyRow(event, market, selection, newPrice, source)}, nil
	}

	oldPrice := decimal.NewFromFloat(existing.Decimal)
	move := price.Sub(oldPrice).Abs().Div(oldPrice)
	if move.LessThan(historyMoveThreshold) {
		return nil, nil
	}

	replacement := &models.Odds{
		ID:        uuid.New(),
		MarketID:  market.ID,
		Selection: selection,
		Decimal:   newPrice,
		Source:    source,
		IsActive:  true,
	}
	if err := t.oddsRepo.Supersede(ctx, market.ID, selection, source, replacement); err != nil {
		return nil, err
	}
	result.Superseded++
	metrics.OddsMovementsTotal.Inc()

	if move.GreaterThanOrEqual(significantMoveThreshold) {
		result.SignificantMoves++
		if t.alerts != nil {
			if _, err := t.alerts.InvalidateForMove(ctx, event.ID, market.ID, selection, existing.Decimal, newPrice); err != nil {
				t.logger.WithError(err).Warn("Failed to invalidate alerts for odds move")
			}
		}
	}

	return []*models.OddsHistory{historyRow(event, market, selection, newPrice, source)}, nil
}

func (t *OddsTracker) activeQuote(ctx context.Context, marketID uuid.UUID, selection, source string) (*models.Odds, error) {
	quotes, err := t.oddsRepo.GetActiveBySelection(ctx, marketID, selection)
	if err != nil {
		return nil, err
	}
	for _, q := range quotes {
		if q.Source == source {
			return q, nil
		}
	}
	return nil, models.ErrNoActiveOdds
}

func historyRow(event *models.Event, market *models.Market, selection string, price float64, source string) *models.OddsHistory {
	return &models.OddsHistory{
		Time:      time.Now(),
		EventID:   event.ID,
		MarketID:  market.ID,
		Selection: selection,
		Decimal:   price,
		Source:    source,
	}
}

// marketTypeFor maps provider market keys onto local market types
func marketTypeFor(key string) (string, bool) {
	switch key {
	case "h2h":
		return models.MarketMatchWinner, true
	case "totals":
		return models.MarketOverUnder, true
	case "btts":
		return models.MarketBothTeamsScore, true
	}
	return "", false
}

// selectionFor canonicalizes a provider outcome name. Match-winner outcomes
// arrive as team names; everything else keeps the provider's label.
func selectionFor(pe datasource.EventOdds, outcomeName string) string {
	switch outcomeName {
	case pe.HomeTeam:
		return models.SelectionHome
	case pe.AwayTeam:
		return models.SelectionAway
	case "Draw":
		return models.SelectionDraw
	}
	return outcomeName
}
