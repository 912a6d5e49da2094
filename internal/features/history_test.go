package features

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/oddsedge/internal/models"
	"github.com/yourusername/oddsedge/internal/repository"
)

type fakeSportRepo struct {
	repository.SportRepository
	sport *models.Sport
}

func (f *fakeSportRepo) GetByKey(ctx context.Context, key string) (*models.Sport, error) {
	if f.sport == nil {
		return nil, models.ErrNotFound
	}
	return f.sport, nil
}

type fakeEventRepo struct {
	repository.EventRepository
	byTeam    []*models.Event
	betweenAB []*models.Event
}

func (f *fakeEventRepo) GetFinishedByTeam(ctx context.Context, sportID uuid.UUID, team string, limit int) ([]*models.Event, error) {
	return f.byTeam, nil
}

func (f *fakeEventRepo) GetFinishedBetween(ctx context.Context, sportID uuid.UUID, teamA, teamB string, limit int) ([]*models.Event, error) {
	return f.betweenAB, nil
}

func finished(home, away string, homeScore, awayScore int) *models.Event {
	return &models.Event{
		ID:        uuid.New(),
		HomeTeam:  home,
		AwayTeam:  away,
		StartTime: time.Now().Add(-24 * time.Hour),
		Status:    models.EventStatusFinished,
		HomeScore: &homeScore,
		AwayScore: &awayScore,
	}
}

func historyFixture(events *fakeEventRepo) *HistorySource {
	sports := &fakeSportRepo{sport: &models.Sport{ID: uuid.New(), Key: "soccer_epl"}}
	return NewHistorySource(sports, events)
}

func TestHistoryTeamFormDerivation(t *testing.T) {
	// Most recent first: W W W L W W for arsenal
	events := &fakeEventRepo{byTeam: []*models.Event{
		finished("arsenal", "chelsea", 2, 0),
		finished("spurs", "arsenal", 0, 1),
		finished("arsenal", "leeds", 3, 1),
		finished("arsenal", "wolves", 0, 2),
		finished("everton", "arsenal", 1, 2),
		finished("arsenal", "brighton", 1, 0),
	}}

	source := historyFixture(events)
	form, err := source.TeamForm(context.Background(), "soccer_epl", "arsenal")
	require.NoError(t, err)

	assert.True(t, form.IsRealData)
	assert.Equal(t, models.TierHistory, form.Tier)

	// 4 wins in the most recent 5, 5 in all 6
	assert.InDelta(t, 0.8, form.WinRate5, 1e-9)
	assert.InDelta(t, 5.0/6.0, form.WinRate10, 1e-9)

	// Streak runs until the loss to wolves
	assert.Equal(t, 3, form.CurrentStreak)

	// Goals from arsenal's perspective over the last 5: 2+1+3+0+2 for, 0+0+1+2+1 against
	assert.InDelta(t, 8.0/5.0, form.GoalsForAvg5, 1e-9)
	assert.InDelta(t, 4.0/5.0, form.GoalsAgainstAvg5, 1e-9)

	assert.InDelta(t, form.WinRate5-form.WinRate10, form.FormTrend, 1e-9)
}

func TestHistoryTeamFormNoMatches(t *testing.T) {
	source := historyFixture(&fakeEventRepo{})

	_, err := source.TeamForm(context.Background(), "soccer_epl", "newly_promoted")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestHistoryHeadToHeadDerivation(t *testing.T) {
	// Meetings, most recent first; "home" perspective team is arsenal
	events := &fakeEventRepo{betweenAB: []*models.Event{
		finished("arsenal", "chelsea", 2, 1), // arsenal win, both scored
		finished("chelsea", "arsenal", 0, 0), // draw
		finished("arsenal", "chelsea", 3, 0), // arsenal win
		finished("chelsea", "arsenal", 2, 1), // chelsea win, both scored
	}}

	source := historyFixture(events)
	h2h, err := source.HeadToHead(context.Background(), "soccer_epl", "arsenal", "chelsea")
	require.NoError(t, err)

	assert.True(t, h2h.IsRealData)
	assert.Equal(t, 4, h2h.TotalMatches)
	assert.InDelta(t, 0.5, h2h.Team1WinRate, 1e-9)
	assert.InDelta(t, 0.25, h2h.DrawRate, 1e-9)
	assert.InDelta(t, 0.5, h2h.BothTeamsScoredRate, 1e-9)

	// 3+0+3+3 goals across 4 meetings
	assert.InDelta(t, 9.0/4.0, h2h.TotalGoalsAvg, 1e-9)

	// 2 arsenal wins in the recent 3 against 2 in 4 overall
	assert.InDelta(t, 2.0/3.0-0.5, h2h.RecentTrend, 1e-9)
}

func TestHistoryTeamStatsNotDerivable(t *testing.T) {
	source := historyFixture(&fakeEventRepo{})

	_, err := source.TeamStats(context.Background(), "soccer_epl", "arsenal")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
