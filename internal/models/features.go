package models

// DataTier identifies where a feature category was sourced from
type DataTier string

// Feature data tiers, in fallback order
const (
	TierLive    DataTier = "live"
	TierHistory DataTier = "history"
	TierDefault DataTier = "default"
)

// TeamForm summarizes a team's recent results
type TeamForm struct {
	WinRate5         float64  `json:"win_rate_5"`
	WinRate10        float64  `json:"win_rate_10"`
	GoalsForAvg5     float64  `json:"goals_for_avg_5"`
	GoalsAgainstAvg5 float64  `json:"goals_against_avg_5"`
	CurrentStreak    int      `json:"current_streak"`
	FormTrend        float64  `json:"form_trend"`
	IsRealData       bool     `json:"is_real_data"`
	Tier             DataTier `json:"tier"`
}

// DefaultTeamForm returns the neutral form used when no data is available
func DefaultTeamForm() TeamForm {
	return TeamForm{
		WinRate5:         0.5,
		WinRate10:        0.5,
		GoalsForAvg5:     1.5,
		GoalsAgainstAvg5: 1.5,
		CurrentStreak:    0,
		FormTrend:        0,
		IsRealData:       false,
		Tier:             TierDefault,
	}
}

// HeadToHead summarizes the historical record between two teams, from the
// perspective of the first (home) team
type HeadToHead struct {
	Team1WinRate        float64  `json:"team1_win_rate"`
	DrawRate            float64  `json:"draw_rate"`
	TotalGoalsAvg       float64  `json:"total_goals_avg"`
	RecentTrend         float64  `json:"recent_trend"`
	TotalMatches        int      `json:"total_matches"`
	BothTeamsScoredRate float64  `json:"both_teams_scored_rate"`
	IsRealData          bool     `json:"is_real_data"`
	Tier                DataTier `json:"tier"`
}

// DefaultHeadToHead returns the neutral head-to-head record
func DefaultHeadToHead() HeadToHead {
	return HeadToHead{
		Team1WinRate:        0.5,
		DrawRate:            0.25,
		TotalGoalsAvg:       3.0,
		RecentTrend:         0,
		TotalMatches:        5,
		BothTeamsScoredRate: 0.5,
		IsRealData:          false,
		Tier:                TierDefault,
	}
}

// DetailedStats holds per-team match statistics averages
type DetailedStats struct {
	Possession   float64  `json:"possession"`
	ShotsPerGame float64  `json:"shots_per_game"`
	PassAccuracy float64  `json:"pass_accuracy"`
	IsRealData   bool     `json:"is_real_data"`
	Tier         DataTier `json:"tier"`
}

// DefaultDetailedStats returns the neutral detailed statistics
func DefaultDetailedStats() DetailedStats {
	return DetailedStats{
		Possession:   50.0,
		ShotsPerGame: 12.0,
		PassAccuracy: 80.0,
		IsRealData:   false,
		Tier:         TierDefault,
	}
}

// MarketIntelligence summarizes cross-bookmaker market signals for an event
type MarketIntelligence struct {
	Consensus           float64  `json:"consensus"`
	Efficiency          float64  `json:"efficiency"`
	SharpMoneyIndicator float64  `json:"sharp_money_indicator"`
	ValueOpportunity    float64  `json:"value_opportunity"`
	OddsSpread          float64  `json:"odds_spread"`
	IsRealData          bool     `json:"is_real_data"`
	Tier                DataTier `json:"tier"`
}

// DefaultMarketIntelligence returns the neutral market signals
func DefaultMarketIntelligence() MarketIntelligence {
	return MarketIntelligence{
		Consensus:           0.7,
		Efficiency:          0.9,
		SharpMoneyIndicator: 0.5,
		ValueOpportunity:    0.02,
		OddsSpread:          0.1,
		IsRealData:          false,
		Tier:                TierDefault,
	}
}

// FeatureSnapshot bundles every feature category consulted for one event,
// from the home team's perspective
type FeatureSnapshot struct {
	HomeForm   TeamForm           `json:"home_form"`
	AwayForm   TeamForm           `json:"away_form"`
	HeadToHead HeadToHead         `json:"head_to_head"`
	HomeStats  DetailedStats      `json:"home_stats"`
	AwayStats  DetailedStats      `json:"away_stats"`
	Market     MarketIntelligence `json:"market"`
}

// DefaultFeatureSnapshot returns a snapshot populated entirely with neutral
// defaults, used when every provider tier fails
func DefaultFeatureSnapshot() FeatureSnapshot {
	return FeatureSnapshot{
		HomeForm:   DefaultTeamForm(),
		AwayForm:   DefaultTeamForm(),
		HeadToHead: DefaultHeadToHead(),
		HomeStats:  DefaultDetailedStats(),
		AwayStats:  DefaultDetailedStats(),
		Market:     DefaultMarketIntelligence(),
	}
}

// FormAdvantage returns the home side's recent-form edge in [-1, 1]
func (s *FeatureSnapshot) FormAdvantage() float64 {
	return s.HomeForm.WinRate5 - s.AwayForm.WinRate5
}

// GoalsAdvantage returns the home side's scoring edge
func (s *FeatureSnapshot) GoalsAdvantage() float64 {
	return s.HomeForm.GoalsForAvg5 - s.AwayForm.GoalsForAvg5
}

// DefenseAdvantage returns the home side's defensive edge (fewer goals
// conceded is better)
func (s *FeatureSnapshot) DefenseAdvantage() float64 {
	return s.AwayForm.GoalsAgainstAvg5 - s.HomeForm.GoalsAgainstAvg5
}

// HasRealData reports whether any feature category came from a real source
func (s *FeatureSnapshot) HasRealData() bool {
	return s.HomeForm.IsRealData || s.AwayForm.IsRealData ||
		s.HeadToHead.IsRealData || s.HomeStats.IsRealData ||
		s.AwayStats.IsRealData || s.Market.IsRealData
}

// DataQuality scores the snapshot's completeness in [0, 1]: form 0.3,
// head-to-head 0.25, detailed stats 0.35, market signals 0.1
func (s *FeatureSnapshot) DataQuality() float64 {
	quality := 0.0
	if s.HomeForm.IsRealData && s.AwayForm.IsRealData {
		quality += 0.3
	}
	if s.HeadToHead.IsRealData {
		quality += 0.25
	}
	if s.HomeStats.IsRealData && s.AwayStats.IsRealData {
		quality += 0.35
	}
	if s.Market.IsRealData {
		quality += 0.1
	}
	return quality
}
