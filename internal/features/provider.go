// Package features resolves the team and market features the prediction
// pipeline consumes. Lookups cascade through tiers: live stats API, persisted
// history, neutral defaults. A feature lookup never fails; the worst case is
// a fully-default snapshot.
package features

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsedge/internal/logger"
	"github.com/yourusername/oddsedge/internal/models"
)

// Source serves one tier of feature lookups
type Source interface {
	TeamForm(ctx context.Context, sportKey, team string) (models.TeamForm, error)
	HeadToHead(ctx context.Context, sportKey, home, away string) (models.HeadToHead, error)
	TeamStats(ctx context.Context, sportKey, team string) (models.DetailedStats, error)
	Tier() models.DataTier
}

// Provider resolves feature snapshots for events
type Provider interface {
	Snapshot(ctx context.Context, sportKey string, event *models.Event, odds []*models.Odds) models.FeatureSnapshot
}

// TieredProvider tries each source in order and falls back to neutral
// defaults when all tiers miss
type TieredProvider struct {
	sources []Source
	cache   *Cache
	logger  *logger.ProviderLogger
}

// NewTieredProvider creates a provider over the given sources, consulted in
// order. The cache may be nil.
func NewTieredProvider(cache *Cache, baseLogger *logrus.Logger, sources ...Source) *TieredProvider {
	return &TieredProvider{
		sources: sources,
		cache:   cache,
		logger:  logger.NewProviderLogger(baseLogger),
	}
}

// Snapshot resolves every feature category for one event. Market signals are
// derived from the supplied active odds rather than an external source.
func (p *TieredProvider) Snapshot(ctx context.Context, sportKey string, event *models.Event, odds []*models.Odds) models.FeatureSnapshot {
	return models.FeatureSnapshot{
		HomeForm:   p.teamForm(ctx, sportKey, event.HomeTeam),
		AwayForm:   p.teamForm(ctx, sportKey, event.AwayTeam),
		HeadToHead: p.headToHead(ctx, sportKey, event.HomeTeam, event.AwayTeam),
		HomeStats:  p.teamStats(ctx, sportKey, event.HomeTeam),
		AwayStats:  p.teamStats(ctx, sportKey, event.AwayTeam),
		Market:     ComputeMarketIntelligence(odds),
	}
}

func (p *TieredProvider) teamForm(ctx context.Context, sportKey, team string) models.TeamForm {
	start := time.Now()
	key := FormKey(sportKey, team)

	if p.cache != nil {
		if form, ok := p.cache.GetForm(ctx, key); ok {
			p.logger.LogFeatureLookup("team_form", team, string(form.Tier), true, latencyMs(start))
			return form
		}
	}

	for i, source := range p.sources {
		form, err := source.TeamForm(ctx, sportKey, team)
		if err != nil {
			p.logFallback("team_form", team, i, err)
			continue
		}
		if p.cache != nil {
			p.cache.SetForm(ctx, key, form)
		}
		p.logger.LogFeatureLookup("team_form", team, string(form.Tier), false, latencyMs(start))
		return form
	}

	p.logger.LogFeatureLookup("team_form", team, string(models.TierDefault), false, latencyMs(start))
	return models.DefaultTeamForm()
}

func (p *TieredProvider) headToHead(ctx context.Context, sportKey, home, away string) models.HeadToHead {
	start := time.Now()
	key := HeadToHeadKey(sportKey, home, away)

	if p.cache != nil {
		if h2h, ok := p.cache.GetHeadToHead(ctx, key); ok {
			p.logger.LogFeatureLookup("head_to_head", home, string(h2h.Tier), true, latencyMs(start))
			return h2h
		}
	}

	for i, source := range p.sources {
		h2h, err := source.HeadToHead(ctx, sportKey, home, away)
		if err != nil {
			p.logFallback("head_to_head", home, i, err)
			continue
		}
		if p.cache != nil {
			p.cache.SetHeadToHead(ctx, key, h2h)
		}
		p.logger.LogFeatureLookup("head_to_head", home, string(h2h.Tier), false, latencyMs(start))
		return h2h
	}

	p.logger.LogFeatureLookup("head_to_head", home, string(models.TierDefault), false, latencyMs(start))
	return models.DefaultHeadToHead()
}

func (p *TieredProvider) teamStats(ctx context.Context, sportKey, team string) models.DetailedStats {
	start := time.Now()
	key := StatsKey(sportKey, team)

	if p.cache != nil {
		if stats, ok := p.cache.GetStats(ctx, key); ok {
			p.logger.LogFeatureLookup("team_stats", team, string(stats.Tier), true, latencyMs(start))
			return stats
		}
	}

	for i, source := range p.sources {
		stats, err := source.TeamStats(ctx, sportKey, team)
		if err != nil {
			p.logFallback("team_stats", team, i, err)
			continue
		}
		if p.cache != nil {
			p.cache.SetStats(ctx, key, stats)
		}
		p.logger.LogFeatureLookup("team_stats", team, string(stats.Tier), false, latencyMs(start))
		return stats
	}

	p.logger.LogFeatureLookup("team_stats", team, string(models.TierDefault), false, latencyMs(start))
	return models.DefaultDetailedStats()
}

func (p *TieredProvider) logFallback(category, team string, sourceIndex int, err error) {
	fromTier := string(p.sources[sourceIndex].Tier())
	toTier := string(models.TierDefault)
	if sourceIndex+1 < len(p.sources) {
		toTier = string(p.sources[sourceIndex+1].Tier())
	}
	p.logger.LogTierFallback(category, team, fromTier, toTier, err.Error())
}

func latencyMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
