package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ModelVersion tags predictions produced by the current pipeline
const ModelVersion = "v2.0-auto"

// Prediction represents a calibrated probability for one selection of a
// market. Predictions are versioned by insert time; recomputation inserts a
// new row instead of mutating the stored one.
type Prediction struct {
	ID           uuid.UUID       `db:"id" json:"id" validate:"required,uuid4"`
	EventID      uuid.UUID       `db:"event_id" json:"event_id" validate:"required,uuid4"`
	MarketID     uuid.UUID       `db:"market_id" json:"market_id" validate:"required,uuid4"`
	Selection    string          `db:"selection" json:"selection" validate:"required"`
	Probability  float64         `db:"probability" json:"probability" validate:"required,gt=0,lt=1"`
	Confidence   float64         `db:"confidence" json:"confidence" validate:"required,gte=0,lte=1"`
	ModelVersion string          `db:"model_version" json:"model_version" validate:"required"`
	Factors      json.RawMessage `db:"factors" json:"factors"`
	WasCorrect   *bool           `db:"was_correct" json:"was_correct"`
	PredictedAt  time.Time       `db:"predicted_at" json:"predicted_at" validate:"required"`
}

// GetFactor retrieves a factor value from the Factors JSON
func (p *Prediction) GetFactor(name string) (interface{}, error) {
	if p.Factors == nil {
		return nil, nil
	}

	var factors map[string]interface{}
	if err := json.Unmarshal(p.Factors, &factors); err != nil {
		return nil, err
	}

	return factors[name], nil
}

// MarketAverage returns the mean implied probability stored in the factors
// snapshot, or 0 when absent. The scheduler derives the previously observed
// average price as 1/MarketAverage for drift comparison.
func (p *Prediction) MarketAverage() float64 {
	v, err := p.GetFactor("marketAverage")
	if err != nil || v == nil {
		return 0
	}
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}

// ImpliedPrice returns the average decimal price the prediction was computed
// from, or 0 when the factors snapshot carries no market average
func (p *Prediction) ImpliedPrice() float64 {
	avg := p.MarketAverage()
	if avg <= 0 {
		return 0
	}
	return 1.0 / avg
}

// MeetsThreshold checks if the confidence meets the given threshold
func (p *Prediction) MeetsThreshold(threshold float64) bool {
	return p.Confidence >= threshold
}
