package features

import (
	"context"

	"github.com/yourusername/oddsedge/internal/models"
	"github.com/yourusername/oddsedge/internal/repository"
)

const (
	formSampleSize       = 10
	headToHeadSampleSize = 10
)

// HistorySource is the persisted-history tier: it derives form and
// head-to-head features from finished events with recorded scores. Detailed
// match statistics are not recoverable from results alone, so this tier
// does not serve them.
type HistorySource struct {
	sports repository.SportRepository
	events repository.EventRepository
}

// NewHistorySource creates the repository-backed feature source
func NewHistorySource(sports repository.SportRepository, events repository.EventRepository) *HistorySource {
	return &HistorySource{sports: sports, events: events}
}

// Tier identifies this source's fallback tier
func (h *HistorySource) Tier() models.DataTier {
	return models.TierHistory
}

// TeamForm derives a team's recent form from its stored finished events
func (h *HistorySource) TeamForm(ctx context.Context, sportKey, team string) (models.TeamForm, error) {
	sport, err := h.sports.GetByKey(ctx, sportKey)
	if err != nil {
		return models.TeamForm{}, err
	}

	events, err := h.events.GetFinishedByTeam(ctx, sport.ID, team, formSampleSize)
	if err != nil {
		return models.TeamForm{}, err
	}
	if len(events) == 0 {
		return models.TeamForm{}, models.ErrNotFound
	}

	var wins5, wins10 int
	var goalsFor5, goalsAgainst5 float64
	streak := 0
	streakBroken := false

	for i, event := range events {
		won := eventWonBy(event, team)
		if won {
			wins10++
		}
		if i < 5 {
			if won {
				wins5++
			}
			gf, ga := goalsFromPerspective(event, team)
			goalsFor5 += float64(gf)
			goalsAgainst5 += float64(ga)
		}
		// Streak counts consecutive wins from the most recent match back
		if !streakBroken {
			if won {
				streak++
			} else {
				streakBroken = true
			}
		}
	}

	recent := min(len(events), 5)
	form := models.TeamForm{
		WinRate5:         float64(wins5) / float64(recent),
		WinRate10:        float64(wins10) / float64(len(events)),
		GoalsForAvg5:     goalsFor5 / float64(recent),
		GoalsAgainstAvg5: goalsAgainst5 / float64(recent),
		CurrentStreak:    streak,
		IsRealData:       true,
		Tier:             models.TierHistory,
	}
	form.FormTrend = form.WinRate5 - form.WinRate10

	return form, nil
}

// HeadToHead derives the record between two teams from stored meetings
func (h *HistorySource) HeadToHead(ctx context.Context, sportKey, home, away string) (models.HeadToHead, error) {
	sport, err := h.sports.GetByKey(ctx, sportKey)
	if err != nil {
		return models.HeadToHead{}, err
	}

	events, err := h.events.GetFinishedBetween(ctx, sport.ID, home, away, headToHeadSampleSize)
	if err != nil {
		return models.HeadToHead{}, err
	}
	if len(events) == 0 {
		return models.HeadToHead{}, models.ErrNotFound
	}

	var homeWins, draws, bothScored int
	var totalGoals float64
	var recentHomeWins int

	for i, event := range events {
		if eventWonBy(event, home) {
			homeWins++
			if i < 3 {
				recentHomeWins++
			}
		}
		if event.Winner() == models.SelectionDraw {
			draws++
		}
		if *event.HomeScore > 0 && *event.AwayScore > 0 {
			bothScored++
		}
		totalGoals += float64(*event.HomeScore + *event.AwayScore)
	}

	n := float64(len(events))
	recent := float64(min(len(events), 3))

	return models.HeadToHead{
		Team1WinRate:        float64(homeWins) / n,
		DrawRate:            float64(draws) / n,
		TotalGoalsAvg:       totalGoals / n,
		RecentTrend:         float64(recentHomeWins)/recent - float64(homeWins)/n,
		TotalMatches:        len(events),
		BothTeamsScoredRate: float64(bothScored) / n,
		IsRealData:          true,
		Tier:                models.TierHistory,
	}, nil
}

// TeamStats is not derivable from match results
func (h *HistorySource) TeamStats(ctx context.Context, sportKey, team string) (models.DetailedStats, error) {
	return models.DetailedStats{}, models.ErrNotFound
}

func eventWonBy(event *models.Event, team string) bool {
	winner := event.Winner()
	if winner == models.SelectionHome {
		return event.HomeTeam == team
	}
	if winner == models.SelectionAway {
		return event.AwayTeam == team
	}
	return false
}

func goalsFromPerspective(event *models.Event, team string) (scored, conceded int) {
	if event.HomeTeam == team {
		return *event.HomeScore, *event.AwayScore
	}
	return *event.AwayScore, *event.HomeScore
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
