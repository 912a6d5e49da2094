// Package service implements the prediction pipeline: odds aggregation,
// probability normalization, value-bet detection and the recompute scheduler.
package service

import (
	"math"
	"sort"

	"github.com/yourusername/oddsedge/internal/models"
)

// SelectionAggregate summarizes the active quotes for one selection
type SelectionAggregate struct {
	Selection   string
	MeanImplied float64 // mean of 1/price across sources
	StdDev      float64 // dispersion of implied probabilities across sources
	BestPrice   float64 // highest decimal price offered
	BestSource  string
	SourceCount int
}

// Consensus returns how much the sources agree on this selection, in [0.5, 1]
func (a *SelectionAggregate) Consensus() float64 {
	return 1.0 - math.Min(a.StdDev*2, 0.5)
}

// MarketAggregate is the aggregation result for one market
type MarketAggregate struct {
	Selections   []SelectionAggregate
	TotalImplied float64 // Σ mean implied probabilities; >1 encodes the overround
	StdDev       float64 // dispersion of the per-selection means
	SourceCount  int     // distinct sources quoting the market
}

// EstimatedMargin returns the bookmaker margin encoded in the quotes
func (m *MarketAggregate) EstimatedMargin() float64 {
	if m.TotalImplied <= 1 {
		return 0
	}
	return m.TotalImplied - 1
}

// Get returns the aggregate for one selection
func (m *MarketAggregate) Get(selection string) (SelectionAggregate, bool) {
	for _, agg := range m.Selections {
		if agg.Selection == selection {
			return agg, true
		}
	}
	return SelectionAggregate{}, false
}

// OddsAggregator turns a market's active quotes into per-selection implied
// probabilities and dispersion metrics
type OddsAggregator struct{}

// NewOddsAggregator creates an odds aggregator
func NewOddsAggregator() *OddsAggregator {
	return &OddsAggregator{}
}

// Aggregate groups active odds by selection and computes per-selection mean
// implied probability, dispersion and best price. Selections with no valid
// quotes are excluded rather than scored as zero. A market with fewer than
// two populated selections cannot be normalized and returns
// ErrInsufficientSelections.
func (a *OddsAggregator) Aggregate(odds []*models.Odds) (*MarketAggregate, error) {
	bySelection := make(map[string][]*models.Odds)
	sources := make(map[string]struct{})
	for _, o := range odds {
		if !o.IsActive || o.Decimal <= 1 {
			continue
		}
		bySelection[o.Selection] = append(bySelection[o.Selection], o)
		sources[o.Source] = struct{}{}
	}

	if len(bySelection) < 2 {
		return nil, models.ErrInsufficientSelections
	}

	result := &MarketAggregate{
		Selections:  make([]SelectionAggregate, 0, len(bySelection)),
		SourceCount: len(sources),
	}

	for selection, quotes := range bySelection {
		agg := SelectionAggregate{
			Selection:   selection,
			SourceCount: len(quotes),
		}

		implied := make([]float64, 0, len(quotes))
		for _, q := range quotes {
			implied = append(implied, q.ImpliedProbability())
			if q.Decimal > agg.BestPrice {
				agg.BestPrice = q.Decimal
				agg.BestSource = q.Source
			}
		}

		agg.MeanImplied = mean(implied)
		agg.StdDev = stddev(implied, agg.MeanImplied)

		result.Selections = append(result.Selections, agg)
		result.TotalImplied += agg.MeanImplied
	}

	// Deterministic ordering for downstream consumers and tests
	sort.Slice(result.Selections, func(i, j int) bool {
		return result.Selections[i].Selection < result.Selections[j].Selection
	})

	means := make([]float64, len(result.Selections))
	for i, agg := range result.Selections {
		means[i] = agg.MeanImplied
	}
	result.StdDev = stddev(means, mean(means))

	return result, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(values)))
}
