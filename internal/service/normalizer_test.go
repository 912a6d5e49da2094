package service

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/oddsedge/internal/models"
)

func testNormalizer() *ProbabilityNormalizer {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewProbabilityNormalizer(nil, log)
}

func threeWayAggregate(t *testing.T, homePrice, drawPrice, awayPrice float64) *MarketAggregate {
	t.Helper()
	aggregator := NewOddsAggregator()
	agg, err := aggregator.Aggregate([]*models.Odds{
		quote(models.SelectionHome, homePrice, "bet365"),
		quote(models.SelectionDraw, drawPrice, "bet365"),
		quote(models.SelectionAway, awayPrice, "bet365"),
	})
	require.NoError(t, err)
	return agg
}

func probabilitySum(predictions []SelectionPrediction) float64 {
	sum := 0.0
	for _, p := range predictions {
		sum += p.Probability
	}
	return sum
}

func findPrediction(t *testing.T, predictions []SelectionPrediction, selection string) SelectionPrediction {
	t.Helper()
	for _, p := range predictions {
		if p.Selection == selection {
			return p
		}
	}
	t.Fatalf("no prediction for selection %s", selection)
	return SelectionPrediction{}
}

func TestNormalizeRemovesOverround(t *testing.T) {
	normalizer := testNormalizer()
	agg := threeWayAggregate(t, 2.10, 3.40, 3.60)

	predictions, err := normalizer.Normalize(agg, models.DefaultFeatureSnapshot())
	require.NoError(t, err)
	require.Len(t, predictions, 3)

	assert.InDelta(t, 1.0, probabilitySum(predictions), 1e-6)

	// With a fully-default snapshot no adjustments apply, so probabilities are
	// exactly the margin-free market probabilities
	home := findPrediction(t, predictions, models.SelectionHome)
	draw := findPrediction(t, predictions, models.SelectionDraw)
	away := findPrediction(t, predictions, models.SelectionAway)

	assert.InDelta(t, 0.454343, home.Probability, 1e-4)
	assert.InDelta(t, 0.280624, draw.Probability, 1e-4)
	assert.InDelta(t, 0.265033, away.Probability, 1e-4)

	assert.Equal(t, 0.0, home.Factors.Adjustment)
	assert.InDelta(t, agg.TotalImplied-1, home.Factors.EstimatedMargin, 1e-9)
	assert.False(t, home.Factors.HasRealData)
}

func TestNormalizeSumInvariantWithAdjustments(t *testing.T) {
	normalizer := testNormalizer()
	agg := threeWayAggregate(t, 2.10, 3.40, 3.60)

	snapshot := models.DefaultFeatureSnapshot()
	snapshot.HomeForm = models.TeamForm{
		WinRate5: 0.9, WinRate10: 0.8, GoalsForAvg5: 2.4, GoalsAgainstAvg5: 0.6,
		CurrentStreak: 4, IsRealData: true, Tier: models.TierLive,
	}
	snapshot.AwayForm = models.TeamForm{
		WinRate5: 0.2, WinRate10: 0.3, GoalsForAvg5: 0.8, GoalsAgainstAvg5: 2.0,
		IsRealData: true, Tier: models.TierLive,
	}
	snapshot.HeadToHead.IsRealData = true
	snapshot.HeadToHead.Team1WinRate = 0.7

	predictions, err := normalizer.Normalize(agg, snapshot)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, probabilitySum(predictions), 1e-6)

	home := findPrediction(t, predictions, models.SelectionHome)
	assert.Greater(t, home.Factors.Adjustment, 0.0)
	assert.Greater(t, home.Probability, home.Factors.Normalized)
	assert.True(t, home.Factors.HasRealData)

	for _, p := range predictions {
		assert.GreaterOrEqual(t, p.Probability, 0.01)
		assert.LessOrEqual(t, p.Probability, 0.99)
	}
}

func TestNormalizeAdjustmentsOnlyRewardFavoredSide(t *testing.T) {
	normalizer := testNormalizer()
	agg := threeWayAggregate(t, 2.10, 3.40, 3.60)

	// Away side has the better form; home must not be penalized directly
	snapshot := models.DefaultFeatureSnapshot()
	snapshot.HomeForm.IsRealData = true
	snapshot.HomeForm.WinRate5 = 0.2
	snapshot.AwayForm.IsRealData = true
	snapshot.AwayForm.WinRate5 = 0.8

	predictions, err := normalizer.Normalize(agg, snapshot)
	require.NoError(t, err)

	home := findPrediction(t, predictions, models.SelectionHome)
	away := findPrediction(t, predictions, models.SelectionAway)

	assert.Equal(t, 0.0, home.Factors.Adjustment)
	assert.Greater(t, away.Factors.Adjustment, 0.0)
}

func TestNormalizeAdjustmentCaps(t *testing.T) {
	normalizer := testNormalizer()
	agg := threeWayAggregate(t, 2.10, 3.40, 3.60)

	// Maximal advantages everywhere; the summed caps bound the total
	snapshot := models.DefaultFeatureSnapshot()
	snapshot.HomeForm = models.TeamForm{
		WinRate5: 1.0, GoalsForAvg5: 5.0, GoalsAgainstAvg5: 0.0,
		CurrentStreak: 10, IsRealData: true,
	}
	snapshot.AwayForm = models.TeamForm{
		WinRate5: 0.0, GoalsForAvg5: 0.0, GoalsAgainstAvg5: 5.0,
		IsRealData: true,
	}
	snapshot.HomeStats = models.DetailedStats{Possession: 70, ShotsPerGame: 20, PassAccuracy: 92, IsRealData: true}
	snapshot.AwayStats = models.DetailedStats{Possession: 30, ShotsPerGame: 6, PassAccuracy: 70, IsRealData: true}
	snapshot.HeadToHead.IsRealData = true
	snapshot.HeadToHead.Team1WinRate = 1.0

	predictions, err := normalizer.Normalize(agg, snapshot)
	require.NoError(t, err)

	maxTotal := formAdjustmentCap + goalsAdjustmentCap + defenseAdjustmentCap +
		streakBonusCap + possessionAdjustmentCap + shotsAdjustmentCap +
		passAccuracyAdjustmentCap + headToHeadAdjustmentCap + consensusBonusCap

	home := findPrediction(t, predictions, models.SelectionHome)
	assert.LessOrEqual(t, home.Factors.Adjustment, maxTotal)
	assert.InDelta(t, 1.0, probabilitySum(predictions), 1e-6)
}

func TestNormalizeConfidenceBounds(t *testing.T) {
	normalizer := testNormalizer()
	agg := threeWayAggregate(t, 2.10, 3.40, 3.60)

	// Without detailed stats confidence is capped at the basic ceiling
	predictions, err := normalizer.Normalize(agg, models.DefaultFeatureSnapshot())
	require.NoError(t, err)
	for _, p := range predictions {
		assert.GreaterOrEqual(t, p.Confidence, confidenceFloor)
		assert.LessOrEqual(t, p.Confidence, basicConfidenceCeil)
	}

	// With every category real the full ceiling applies
	rich := models.DefaultFeatureSnapshot()
	rich.HomeForm.IsRealData = true
	rich.AwayForm.IsRealData = true
	rich.HeadToHead.IsRealData = true
	rich.HomeStats.IsRealData = true
	rich.AwayStats.IsRealData = true
	rich.Market.IsRealData = true

	predictions, err = normalizer.Normalize(agg, rich)
	require.NoError(t, err)
	for _, p := range predictions {
		assert.GreaterOrEqual(t, p.Confidence, confidenceFloor)
		assert.LessOrEqual(t, p.Confidence, confidenceCeiling)
	}
}

func TestNormalizeConfidenceFloorOnDispersedQuotes(t *testing.T) {
	normalizer := testNormalizer()
	aggregator := NewOddsAggregator()

	// Wildly disagreeing sources drive consensus, and confidence, to the floor
	agg, err := aggregator.Aggregate([]*models.Odds{
		quote(models.SelectionHome, 1.20, "bet365"),
		quote(models.SelectionHome, 9.00, "shady"),
		quote(models.SelectionAway, 1.30, "bet365"),
		quote(models.SelectionAway, 8.00, "shady"),
	})
	require.NoError(t, err)

	predictions, err := normalizer.Normalize(agg, models.DefaultFeatureSnapshot())
	require.NoError(t, err)
	for _, p := range predictions {
		assert.Equal(t, confidenceFloor, p.Confidence)
	}
}

func TestNormalizeDeterministicWithoutJitter(t *testing.T) {
	normalizer := testNormalizer()
	agg := threeWayAggregate(t, 2.10, 3.40, 3.60)
	snapshot := models.DefaultFeatureSnapshot()

	first, err := normalizer.Normalize(agg, snapshot)
	require.NoError(t, err)
	second, err := normalizer.Normalize(agg, snapshot)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Probability, second[i].Probability)
		assert.Equal(t, first[i].Confidence, second[i].Confidence)
	}
}

func TestNormalizeJitterStaysInBounds(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	normalizer := NewProbabilityNormalizer(NewSeededNoise(42, 0.06), log)

	agg := threeWayAggregate(t, 2.10, 3.40, 3.60)

	for i := 0; i < 50; i++ {
		predictions, err := normalizer.Normalize(agg, models.DefaultFeatureSnapshot())
		require.NoError(t, err)
		for _, p := range predictions {
			assert.GreaterOrEqual(t, p.Confidence, confidenceFloor)
			assert.LessOrEqual(t, p.Confidence, basicConfidenceCeil)
		}
	}
}

func TestNormalizeInsufficientSelections(t *testing.T) {
	normalizer := testNormalizer()

	_, err := normalizer.Normalize(nil, models.DefaultFeatureSnapshot())
	assert.ErrorIs(t, err, models.ErrInsufficientSelections)

	oneSided := &MarketAggregate{
		Selections:   []SelectionAggregate{{Selection: models.SelectionHome, MeanImplied: 0.5}},
		TotalImplied: 0.5,
	}
	_, err = normalizer.Normalize(oneSided, models.DefaultFeatureSnapshot())
	assert.ErrorIs(t, err, models.ErrInsufficientSelections)
}

func TestNormalizeNonComparativeMarketPassesThrough(t *testing.T) {
	normalizer := testNormalizer()
	aggregator := NewOddsAggregator()

	// Totals market has no home/away sides, so form signals cannot apply even
	// when present
	agg, err := aggregator.Aggregate([]*models.Odds{
		quote("OVER_2.5", 1.90, "bet365"),
		quote("UNDER_2.5", 1.95, "bet365"),
	})
	require.NoError(t, err)

	snapshot := models.DefaultFeatureSnapshot()
	snapshot.HomeForm.IsRealData = true
	snapshot.HomeForm.WinRate5 = 1.0
	snapshot.AwayForm.IsRealData = true
	snapshot.AwayForm.WinRate5 = 0.0

	predictions, err := normalizer.Normalize(agg, snapshot)
	require.NoError(t, err)

	for _, p := range predictions {
		assert.Equal(t, 0.0, p.Factors.Adjustment)
	}
	assert.InDelta(t, 1.0, probabilitySum(predictions), 1e-6)
}
