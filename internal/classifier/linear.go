package classifier

import (
	"context"
	"fmt"
	"math"

	"github.com/justsurfingit/lead-labeler/internal/predict"
)

// Logistic is a binary logistic regression over the feature vector.
type Logistic struct {
	Coef      predict.FeatureVector
	Intercept float64
	Threshold float64
}

func newLogistic(a *Artifact) (*Logistic, error) {
	if len(a.Coef) != predict.VectorSize {
		return nil, fmt.Errorf("%w: logistic model needs %d coefficients, got %d",
			ErrInvalidArtifact, predict.VectorSize, len(a.Coef))
	}
	m := &Logistic{Intercept: a.Intercept, Threshold: 0.5}
	copy(m.Coef[:], a.Coef)
	if a.Threshold != nil {
		if *a.Threshold <= 0 || *a.Threshold >= 1 {
			return nil, fmt.Errorf("%w: threshold %v outside (0, 1)", ErrInvalidArtifact, *a.Threshold)
		}
		m.Threshold = *a.Threshold
	}
	return m, nil
}

// Probability returns P(class 1 | v).
func (m *Logistic) Probability(v predict.FeatureVector) float64 {
	z := m.Intercept
	for i, w := range m.Coef {
		z += w * v[i]
	}
	return 1 / (1 + math.Exp(-z))
}

func (m *Logistic) Predict(_ context.Context, v predict.FeatureVector) (int, error) {
	if m.Probability(v) >= m.Threshold {
		return 1, nil
	}
	return 0, nil
}
