package features

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/oddsedge/internal/models"
)

// stubSource serves canned features or fails every lookup
type stubSource struct {
	tier  models.DataTier
	form  *models.TeamForm
	h2h   *models.HeadToHead
	stats *models.DetailedStats
	calls int
}

func (s *stubSource) TeamForm(ctx context.Context, sportKey, team string) (models.TeamForm, error) {
	s.calls++
	if s.form == nil {
		return models.TeamForm{}, models.ErrNotFound
	}
	return *s.form, nil
}

func (s *stubSource) HeadToHead(ctx context.Context, sportKey, home, away string) (models.HeadToHead, error) {
	s.calls++
	if s.h2h == nil {
		return models.HeadToHead{}, models.ErrNotFound
	}
	return *s.h2h, nil
}

func (s *stubSource) TeamStats(ctx context.Context, sportKey, team string) (models.DetailedStats, error) {
	s.calls++
	if s.stats == nil {
		return models.DetailedStats{}, models.ErrNotFound
	}
	return *s.stats, nil
}

func (s *stubSource) Tier() models.DataTier { return s.tier }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testEvent() *models.Event {
	return &models.Event{HomeTeam: "Arsenal", AwayTeam: "Chelsea"}
}

func TestSnapshotAllTiersMiss(t *testing.T) {
	empty := &stubSource{tier: models.TierLive}
	provider := NewTieredProvider(nil, quietLogger(), empty)

	snapshot := provider.Snapshot(context.Background(), "soccer_epl", testEvent(), nil)

	// Everything falls through to neutral defaults; the lookup never fails
	assert.Equal(t, models.DefaultTeamForm(), snapshot.HomeForm)
	assert.Equal(t, models.DefaultHeadToHead(), snapshot.HeadToHead)
	assert.Equal(t, models.DefaultDetailedStats(), snapshot.HomeStats)
	assert.False(t, snapshot.HasRealData())
}

func TestSnapshotFallsBackThroughTiers(t *testing.T) {
	liveForm := models.TeamForm{WinRate5: 0.9, IsRealData: true, Tier: models.TierLive}
	historyForm := models.TeamForm{WinRate5: 0.6, IsRealData: true, Tier: models.TierHistory}

	live := &stubSource{tier: models.TierLive}
	history := &stubSource{tier: models.TierHistory, form: &historyForm}
	provider := NewTieredProvider(nil, quietLogger(), live, history)

	snapshot := provider.Snapshot(context.Background(), "soccer_epl", testEvent(), nil)
	assert.Equal(t, historyForm, snapshot.HomeForm)
	assert.Equal(t, models.TierHistory, snapshot.AwayForm.Tier)

	// When the live tier serves, history is never consulted
	live.form = &liveForm
	history.calls = 0
	snapshot = provider.Snapshot(context.Background(), "soccer_epl", testEvent(), nil)
	assert.Equal(t, liveForm, snapshot.HomeForm)
}

func TestSnapshotUsesCacheOnRepeat(t *testing.T) {
	form := models.TeamForm{WinRate5: 0.7, IsRealData: true, Tier: models.TierHistory}
	source := &stubSource{tier: models.TierHistory, form: &form}

	cache := testCache()
	provider := NewTieredProvider(cache, quietLogger(), source)

	provider.Snapshot(context.Background(), "soccer_epl", testEvent(), nil)
	firstCalls := source.calls

	provider.Snapshot(context.Background(), "soccer_epl", testEvent(), nil)

	// Form and stats lookups hit the cache the second time; stats always miss
	// the stub so only the form call count stays flat
	cached, ok := cache.GetForm(context.Background(), FormKey("soccer_epl", "Arsenal"))
	assert.True(t, ok)
	assert.Equal(t, form, cached)
	assert.Greater(t, firstCalls, 0)
}

func TestSnapshotMarketFromOdds(t *testing.T) {
	provider := NewTieredProvider(nil, quietLogger())

	odds := []*models.Odds{
		marketQuote(models.SelectionHome, 2.00, "bet365"),
		marketQuote(models.SelectionHome, 2.02, "pinnacle"),
		marketQuote(models.SelectionAway, 1.90, "bet365"),
		marketQuote(models.SelectionAway, 1.92, "pinnacle"),
	}

	snapshot := provider.Snapshot(context.Background(), "soccer_epl", testEvent(), odds)
	assert.True(t, snapshot.Market.IsRealData)
	assert.Equal(t, models.TierLive, snapshot.Market.Tier)
}
