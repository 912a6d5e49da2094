package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSnapshotIsNeutral(t *testing.T) {
	snapshot := DefaultFeatureSnapshot()

	assert.False(t, snapshot.HasRealData())
	assert.Equal(t, 0.0, snapshot.DataQuality())

	// Neutral defaults carry no comparative signal
	assert.Equal(t, 0.0, snapshot.FormAdvantage())
	assert.Equal(t, 0.0, snapshot.GoalsAdvantage())
	assert.Equal(t, 0.0, snapshot.DefenseAdvantage())

	assert.Equal(t, TierDefault, snapshot.HomeForm.Tier)
	assert.Equal(t, TierDefault, snapshot.Market.Tier)
}

func TestDataQualityWeights(t *testing.T) {
	snapshot := DefaultFeatureSnapshot()

	snapshot.HomeForm.IsRealData = true
	snapshot.AwayForm.IsRealData = true
	assert.InDelta(t, 0.3, snapshot.DataQuality(), 1e-9)

	snapshot.HeadToHead.IsRealData = true
	assert.InDelta(t, 0.55, snapshot.DataQuality(), 1e-9)

	snapshot.HomeStats.IsRealData = true
	snapshot.AwayStats.IsRealData = true
	assert.InDelta(t, 0.9, snapshot.DataQuality(), 1e-9)

	snapshot.Market.IsRealData = true
	assert.InDelta(t, 1.0, snapshot.DataQuality(), 1e-9)
}

func TestDataQualityRequiresBothSides(t *testing.T) {
	snapshot := DefaultFeatureSnapshot()

	// One-sided form does not count as real form
	snapshot.HomeForm.IsRealData = true
	assert.Equal(t, 0.0, snapshot.DataQuality())
	assert.True(t, snapshot.HasRealData())
}

func TestAdvantageDirections(t *testing.T) {
	snapshot := DefaultFeatureSnapshot()
	snapshot.HomeForm.WinRate5 = 0.8
	snapshot.AwayForm.WinRate5 = 0.3
	snapshot.HomeForm.GoalsAgainstAvg5 = 0.5
	snapshot.AwayForm.GoalsAgainstAvg5 = 2.0

	assert.InDelta(t, 0.5, snapshot.FormAdvantage(), 1e-9)

	// Conceding less than the opponent is a positive defensive edge
	assert.InDelta(t, 1.5, snapshot.DefenseAdvantage(), 1e-9)
}
