package features

import (
	"math"

	"github.com/yourusername/oddsedge/internal/models"
)

// ComputeMarketIntelligence derives cross-bookmaker signals from a market's
// active odds. With fewer than two distinct bookmakers there is no consensus
// to measure and the neutral defaults are returned.
func ComputeMarketIntelligence(odds []*models.Odds) models.MarketIntelligence {
	bySelection := make(map[string][]float64)
	sources := make(map[string]struct{})
	for _, o := range odds {
		if o.Decimal <= 1 {
			continue
		}
		bySelection[o.Selection] = append(bySelection[o.Selection], 1.0/o.Decimal)
		sources[o.Source] = struct{}{}
	}

	if len(sources) < 2 || len(bySelection) < 2 {
		return models.DefaultMarketIntelligence()
	}

	// Consensus: how tightly bookmakers agree, averaged across selections
	var spreadSum float64
	var overround float64
	var maxSpread float64
	for _, probs := range bySelection {
		mean := meanOf(probs)
		overround += mean
		spread := stddevOf(probs, mean)
		spreadSum += spread
		if spread > maxSpread {
			maxSpread = spread
		}
	}
	avgSpread := spreadSum / float64(len(bySelection))

	consensus := 1.0 - math.Min(avgSpread*10, 0.5)
	efficiency := math.Min(1.0/overround, 1.0)

	return models.MarketIntelligence{
		Consensus:           consensus,
		Efficiency:          efficiency,
		SharpMoneyIndicator: 0.5,
		ValueOpportunity:    math.Max(0, maxSpread-avgSpread),
		OddsSpread:          avgSpread,
		IsRealData:          true,
		Tier:                models.TierLive,
	}
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddevOf(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(values)))
}
