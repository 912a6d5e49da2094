package features

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsedge/internal/config"
	"github.com/yourusername/oddsedge/internal/datasource"
	"github.com/yourusername/oddsedge/internal/metrics"
	"github.com/yourusername/oddsedge/internal/models"
)

const statsAPIName = "stats-api"

// StatsAPISource is the live tier: a REST client for a team-statistics
// provider. It returns feature structs tagged as live real data.
type StatsAPISource struct {
	baseURL    string
	apiKey     string
	enabled    bool
	httpClient *datasource.RateLimitedHTTPClient
	logger     *logrus.Entry
}

// NewStatsAPISource creates the live stats source from configuration
func NewStatsAPISource(cfg config.StatsProviderConfig, logger *logrus.Logger) *StatsAPISource {
	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.RetryAttempts
	httpCfg.RateLimit = cfg.RateLimitPerSec

	return &StatsAPISource{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		enabled:    cfg.Enabled,
		httpClient: datasource.NewRateLimitedHTTPClient(httpCfg, logger),
		logger:     logger.WithField("component", "stats_api"),
	}
}

// Name identifies this source in logs and readiness checks
func (s *StatsAPISource) Name() string {
	return statsAPIName
}

// Tier identifies this source's fallback tier
func (s *StatsAPISource) Tier() models.DataTier {
	return models.TierLive
}

// IsEnabled reports whether the live tier should be consulted
func (s *StatsAPISource) IsEnabled() bool {
	return s.enabled && s.baseURL != ""
}

type formResponse struct {
	WinRate5         float64 `json:"win_rate_5"`
	WinRate10        float64 `json:"win_rate_10"`
	GoalsForAvg5     float64 `json:"goals_for_avg_5"`
	GoalsAgainstAvg5 float64 `json:"goals_against_avg_5"`
	CurrentStreak    int     `json:"current_streak"`
	FormTrend        float64 `json:"form_trend"`
}

type headToHeadResponse struct {
	Team1WinRate        float64 `json:"team1_win_rate"`
	DrawRate            float64 `json:"draw_rate"`
	TotalGoalsAvg       float64 `json:"total_goals_avg"`
	RecentTrend         float64 `json:"recent_trend"`
	TotalMatches        int     `json:"total_matches"`
	BothTeamsScoredRate float64 `json:"both_teams_scored_rate"`
}

type statsResponse struct {
	Possession   float64 `json:"possession"`
	ShotsPerGame float64 `json:"shots_per_game"`
	PassAccuracy float64 `json:"pass_accuracy"`
}

// TeamForm fetches a team's recent form from the stats API
func (s *StatsAPISource) TeamForm(ctx context.Context, sportKey, team string) (models.TeamForm, error) {
	var resp formResponse
	err := s.getJSON(ctx, "team_form", "/v1/teams/form", url.Values{
		"sport": {sportKey},
		"team":  {team},
	}, &resp)
	if err != nil {
		return models.TeamForm{}, err
	}

	return models.TeamForm{
		WinRate5:         resp.WinRate5,
		WinRate10:        resp.WinRate10,
		GoalsForAvg5:     resp.GoalsForAvg5,
		GoalsAgainstAvg5: resp.GoalsAgainstAvg5,
		CurrentStreak:    resp.CurrentStreak,
		FormTrend:        resp.FormTrend,
		IsRealData:       true,
		Tier:             models.TierLive,
	}, nil
}

// HeadToHead fetches the historical record between two teams
func (s *StatsAPISource) HeadToHead(ctx context.Context, sportKey, home, away string) (models.HeadToHead, error) {
	var resp headToHeadResponse
	err := s.getJSON(ctx, "head_to_head", "/v1/teams/h2h", url.Values{
		"sport": {sportKey},
		"home":  {home},
		"away":  {away},
	}, &resp)
	if err != nil {
		return models.HeadToHead{}, err
	}

	return models.HeadToHead{
		Team1WinRate:        resp.Team1WinRate,
		DrawRate:            resp.DrawRate,
		TotalGoalsAvg:       resp.TotalGoalsAvg,
		RecentTrend:         resp.RecentTrend,
		TotalMatches:        resp.TotalMatches,
		BothTeamsScoredRate: resp.BothTeamsScoredRate,
		IsRealData:          true,
		Tier:                models.TierLive,
	}, nil
}

// TeamStats fetches a team's per-match statistics averages
func (s *StatsAPISource) TeamStats(ctx context.Context, sportKey, team string) (models.DetailedStats, error) {
	var resp statsResponse
	err := s.getJSON(ctx, "team_stats", "/v1/teams/stats", url.Values{
		"sport": {sportKey},
		"team":  {team},
	}, &resp)
	if err != nil {
		return models.DetailedStats{}, err
	}

	return models.DetailedStats{
		Possession:   resp.Possession,
		ShotsPerGame: resp.ShotsPerGame,
		PassAccuracy: resp.PassAccuracy,
		IsRealData:   true,
		Tier:         models.TierLive,
	}, nil
}

func (s *StatsAPISource) getJSON(ctx context.Context, operation, path string, params url.Values, dest interface{}) error {
	endpoint := s.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(ctx, req)
	metrics.RecordProviderCall(statsAPIName, operation, time.Since(start).Seconds())
	if err != nil {
		metrics.RecordProviderError(statsAPIName)
		return datasource.NewProviderError(statsAPIName, datasource.ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordProviderError(statsAPIName)
		return datasource.NewProviderError(statsAPIName, datasource.ErrCodeNetworkError, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RecordProviderError(statsAPIName)
		return datasource.NewProviderError(statsAPIName, datasource.ErrCodeServerError,
			fmt.Sprintf("unexpected status: %d", resp.StatusCode), nil)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		metrics.RecordProviderError(statsAPIName)
		return datasource.NewProviderError(statsAPIName, datasource.ErrCodeInvalidData, "failed to decode response", err)
	}

	return nil
}

// Close releases the underlying HTTP client resources
func (s *StatsAPISource) Close() error {
	return s.httpClient.Close()
}
