package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoNoiseIsZero(t *testing.T) {
	source := NoNoise()
	for i := 0; i < 10; i++ {
		assert.Equal(t, 0.0, source.ConfidenceJitter())
	}
}

func TestSeededNoiseReproducible(t *testing.T) {
	first := NewSeededNoise(1234, 0.06)
	second := NewSeededNoise(1234, 0.06)

	for i := 0; i < 100; i++ {
		assert.Equal(t, first.ConfidenceJitter(), second.ConfidenceJitter())
	}
}

func TestSeededNoiseMagnitudeBound(t *testing.T) {
	source := NewSeededNoise(99, 0.06)

	for i := 0; i < 1000; i++ {
		jitter := source.ConfidenceJitter()
		assert.LessOrEqual(t, math.Abs(jitter), 0.03)
	}
}

func TestSeededNoiseDifferentSeedsDiverge(t *testing.T) {
	first := NewSeededNoise(1, 0.06)
	second := NewSeededNoise(2, 0.06)

	diverged := false
	for i := 0; i < 10; i++ {
		if first.ConfidenceJitter() != second.ConfidenceJitter() {
			diverged = true
			break
		}
	}
	assert.True(t, diverged)
}
