package service

import (
	"math/rand"
	"sync"
)

// NoiseSource supplies the optional confidence jitter. Jitter exists to keep
// otherwise-identical predictions from reporting identical confidence; tests
// and reproducible runs use the disabled source.
type NoiseSource interface {
	// ConfidenceJitter returns a small signed perturbation, or 0 when disabled
	ConfidenceJitter() float64
}

// noNoise is the default: no jitter, fully deterministic output
type noNoise struct{}

func (noNoise) ConfidenceJitter() float64 { return 0 }

// NoNoise returns a noise source that never perturbs confidence
func NoNoise() NoiseSource {
	return noNoise{}
}

// seededNoise produces uniform jitter in [-magnitude/2, +magnitude/2]
type seededNoise struct {
	mu        sync.Mutex
	rng       *rand.Rand
	magnitude float64
}

// NewSeededNoise returns a reproducible jitter source. The conventional
// magnitude is 0.06, giving ±3% of confidence.
func NewSeededNoise(seed int64, magnitude float64) NoiseSource {
	return &seededNoise{
		rng:       rand.New(rand.NewSource(seed)),
		magnitude: magnitude,
	}
}

func (n *seededNoise) ConfidenceJitter() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return (n.rng.Float64() - 0.5) * n.magnitude
}
