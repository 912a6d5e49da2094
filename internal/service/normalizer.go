package service

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsedge/internal/models"
)

// Feature adjustment caps. Each category contributes at most this much to a
// selection's normalized probability before re-normalization.
const (
	formAdjustmentCap         = 0.15
	goalsAdjustmentCap        = 0.12
	defenseAdjustmentCap      = 0.10
	possessionAdjustmentCap   = 0.08
	shotsAdjustmentCap        = 0.06
	passAccuracyAdjustmentCap = 0.05
	headToHeadAdjustmentCap   = 0.10
	consensusBonusCap         = 0.05
	streakBonusCap            = 0.08
	streakBonusPerWin         = 0.03
)

// Confidence tuning
const (
	confidenceFloor      = 0.45
	confidenceCeiling    = 0.95
	basicConfidenceCeil  = 0.82 // ceiling without detailed statistics
	largeAdjustmentLimit = 0.20
	probabilityFloor     = 0.01
	probabilityCeiling   = 0.99
	defaultMargin        = 0.05
)

// PredictionFactors is the auditable snapshot stored with every prediction
type PredictionFactors struct {
	MarketAverage   float64           `json:"marketAverage"`
	MarketConsensus float64           `json:"marketConsensus"`
	Normalized      float64           `json:"normalized"`
	Adjustment      float64           `json:"adjustment"`
	EstimatedMargin float64           `json:"estimatedMargin"`
	BookmakerCount  int               `json:"bookmakerCount"`
	DataQuality     float64           `json:"dataQuality"`
	HasRealData     bool              `json:"hasRealData"`
	FeatureTiers    map[string]string `json:"featureTiers"`
}

// SelectionPrediction is the normalizer's output for one selection
type SelectionPrediction struct {
	Selection   string
	Probability float64
	Confidence  float64
	Factors     PredictionFactors
}

// EncodeFactors serializes the factors snapshot for storage
func (p *SelectionPrediction) EncodeFactors() (json.RawMessage, error) {
	raw, err := json.Marshal(p.Factors)
	if err != nil {
		return nil, fmt.Errorf("failed to encode factors: %w", err)
	}
	return raw, nil
}

// ProbabilityNormalizer removes bookmaker margin from aggregated implied
// probabilities, blends in bounded feature adjustments, and scores confidence
type ProbabilityNormalizer struct {
	noise  NoiseSource
	logger *logrus.Entry
}

// NewProbabilityNormalizer creates a normalizer. A nil noise source disables
// confidence jitter.
func NewProbabilityNormalizer(noise NoiseSource, logger *logrus.Logger) *ProbabilityNormalizer {
	if noise == nil {
		noise = NoNoise()
	}
	return &ProbabilityNormalizer{
		noise:  noise,
		logger: logger.WithField("component", "normalizer"),
	}
}

// Normalize converts a market aggregate plus a feature snapshot into one
// prediction per selection. The returned probabilities sum to 1 and each lies
// in [0.01, 0.99]; confidence lies in [0.45, 0.95].
func (n *ProbabilityNormalizer) Normalize(agg *MarketAggregate, snapshot models.FeatureSnapshot) ([]SelectionPrediction, error) {
	if agg == nil || len(agg.Selections) < 2 {
		return nil, models.ErrInsufficientSelections
	}

	// Step 1: margin removal
	normalized := make([]float64, len(agg.Selections))
	for i, sel := range agg.Selections {
		normalized[i] = sel.MeanImplied / agg.TotalImplied
	}

	// Step 2: bounded feature adjustments on the favored side only
	adjustments := n.calculateAdjustments(agg, normalized, snapshot)

	adjusted := make([]float64, len(normalized))
	adjustedTotal := 0.0
	totalImpact := 0.0
	for i := range normalized {
		adjusted[i] = normalized[i] + adjustments[i]
		if adjusted[i] < probabilityFloor {
			adjusted[i] = probabilityFloor
		}
		adjustedTotal += adjusted[i]
		totalImpact += math.Abs(adjustments[i])
	}
	for i := range adjusted {
		adjusted[i] = clamp(adjusted[i]/adjustedTotal, probabilityFloor, probabilityCeiling)
	}

	// Step 3: confidence per selection
	quality := snapshot.DataQuality()
	predictions := make([]SelectionPrediction, len(agg.Selections))
	for i, sel := range agg.Selections {
		confidence := n.calculateConfidence(&sel, snapshot, totalImpact, quality)

		predictions[i] = SelectionPrediction{
			Selection:   sel.Selection,
			Probability: adjusted[i],
			Confidence:  confidence,
			Factors: PredictionFactors{
				MarketAverage:   sel.MeanImplied,
				MarketConsensus: sel.Consensus(),
				Normalized:      normalized[i],
				Adjustment:      adjustments[i],
				EstimatedMargin: agg.EstimatedMargin(),
				BookmakerCount:  sel.SourceCount,
				DataQuality:     quality,
				HasRealData:     snapshot.HasRealData(),
				FeatureTiers:    featureTiers(snapshot),
			},
		}
	}

	return predictions, nil
}

// calculateAdjustments computes the signed per-selection adjustment from the
// feature snapshot. Signals only ever reward the side they favor; the other
// side is corrected by the later re-normalization, not by a mirrored penalty
// on every category.
func (n *ProbabilityNormalizer) calculateAdjustments(agg *MarketAggregate, normalized []float64, snapshot models.FeatureSnapshot) []float64 {
	adjustments := make([]float64, len(agg.Selections))

	homeIdx, awayIdx := -1, -1
	for i, sel := range agg.Selections {
		switch sel.Selection {
		case models.SelectionHome:
			homeIdx = i
		case models.SelectionAway:
			awayIdx = i
		}
	}
	// Feature signals are comparative home-vs-away statements; markets
	// without those selections take the market prices as-is
	if homeIdx < 0 || awayIdx < 0 {
		return adjustments
	}

	apply := func(advantage, limit float64) {
		impact := math.Min(math.Abs(advantage)*limit, limit)
		if advantage > 0 {
			adjustments[homeIdx] += impact
		} else if advantage < 0 {
			adjustments[awayIdx] += impact
		}
	}

	formReal := snapshot.HomeForm.IsRealData && snapshot.AwayForm.IsRealData
	if formReal {
		apply(snapshot.FormAdvantage(), formAdjustmentCap)
		apply(clampUnit(snapshot.GoalsAdvantage()), goalsAdjustmentCap)
		apply(clampUnit(snapshot.DefenseAdvantage()), defenseAdjustmentCap)

		if streak := snapshot.HomeForm.CurrentStreak; streak > 2 {
			adjustments[homeIdx] += math.Min(float64(streak)*streakBonusPerWin, streakBonusCap)
		}
		if streak := snapshot.AwayForm.CurrentStreak; streak > 2 {
			adjustments[awayIdx] += math.Min(float64(streak)*streakBonusPerWin, streakBonusCap)
		}
	}

	if snapshot.HomeStats.IsRealData && snapshot.AwayStats.IsRealData {
		apply((snapshot.HomeStats.Possession-snapshot.AwayStats.Possession)/100, possessionAdjustmentCap)
		apply(clampUnit((snapshot.HomeStats.ShotsPerGame-snapshot.AwayStats.ShotsPerGame)/20), shotsAdjustmentCap)
		apply((snapshot.HomeStats.PassAccuracy-snapshot.AwayStats.PassAccuracy)/100, passAccuracyAdjustmentCap)
	}

	if snapshot.HeadToHead.IsRealData {
		apply((snapshot.HeadToHead.Team1WinRate-0.5)*2, headToHeadAdjustmentCap)
	}

	// Strong bookmaker agreement nudges the market favorite
	if snapshot.Market.IsRealData && snapshot.Market.Consensus > 0.8 {
		favorite := 0
		for i := range normalized {
			if normalized[i] > normalized[favorite] {
				favorite = i
			}
		}
		adjustments[favorite] += math.Min((snapshot.Market.Consensus-0.8)*0.25, consensusBonusCap)
	}

	return adjustments
}

// calculateConfidence scores how much to trust one selection's probability
func (n *ProbabilityNormalizer) calculateConfidence(sel *SelectionAggregate, snapshot models.FeatureSnapshot, totalImpact, quality float64) float64 {
	confidence := sel.Consensus()

	formReal := snapshot.HomeForm.IsRealData && snapshot.AwayForm.IsRealData
	statsReal := snapshot.HomeStats.IsRealData && snapshot.AwayStats.IsRealData

	if formReal {
		confidence += 0.05
	}
	if snapshot.HeadToHead.IsRealData {
		confidence += 0.03
	}
	if statsReal {
		confidence += 0.07
	}
	if snapshot.Market.IsRealData && snapshot.Market.Consensus > 0.8 {
		confidence += 0.03
	}
	if sel.SourceCount >= 5 {
		confidence += 0.02
	}

	// A large cumulative swing means the features disagree with the market,
	// which is uncertainty, not conviction
	if totalImpact > largeAdjustmentLimit {
		confidence -= 0.05
	}

	confidence *= 0.7 + 0.3*quality

	ceiling := basicConfidenceCeil
	if statsReal {
		ceiling = confidenceCeiling
	}

	confidence = clamp(confidence, confidenceFloor, ceiling)
	confidence += n.noise.ConfidenceJitter()
	return clamp(confidence, confidenceFloor, ceiling)
}

func featureTiers(snapshot models.FeatureSnapshot) map[string]string {
	return map[string]string{
		"homeForm":   string(snapshot.HomeForm.Tier),
		"awayForm":   string(snapshot.AwayForm.Tier),
		"headToHead": string(snapshot.HeadToHead.Tier),
		"homeStats":  string(snapshot.HomeStats.Tier),
		"awayStats":  string(snapshot.AwayStats.Tier),
		"market":     string(snapshot.Market.Tier),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
