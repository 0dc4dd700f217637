package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"investadvisor/server/internal/models"
	"math"
	"os"
	"path/filepath"
)

const (
	KindClassifier = "classifier"
	KindRegressor  = "regressor"
)

var ErrInvalidArtifact = errors.New("invalid model artifact")

// NumericTerm is a standardized linear term: weight * (x - mean) / scale
type NumericTerm struct {
	Weight float64 `json:"weight"`
	Mean   float64 `json:"mean"`
	Scale  float64 `json:"scale"`
}

// LinearArtifact is the JSON export of a trained linear estimator. Categorical
// features are one-hot encoded; labels without a weight contribute nothing.
type LinearArtifact struct {
	Kind        string                        `json:"kind"`
	Features    []string                      `json:"features"`
	Intercept   float64                       `json:"intercept"`
	Numeric     map[string]NumericTerm        `json:"numeric"`
	Categorical map[string]map[string]float64 `json:"categorical"`
	// Threshold applies to the classifier's positive class probability
	Threshold float64 `json:"threshold"`
}

// LoadArtifact reads and validates one estimator export
func LoadArtifact(path, kind string) (*LinearArtifact, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact LinearArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, path, err)
	}

	if artifact.Kind != kind {
		return nil, fmt.Errorf("%w: %s: expected kind %q, got %q", ErrInvalidArtifact, path, kind, artifact.Kind)
	}
	if err := artifact.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, path, err)
	}

	return &artifact, nil
}

func (a *LinearArtifact) validate() error {
	if len(a.Features) == 0 {
		return errors.New("no features declared")
	}
	for _, name := range a.Features {
		term, numeric := a.Numeric[name]
		_, categorical := a.Categorical[name]
		switch {
		case numeric && categorical:
			return fmt.Errorf("feature %s is both numeric and categorical", name)
		case !numeric && !categorical:
			return fmt.Errorf("feature %s has no term", name)
		case numeric && term.Scale == 0:
			return fmt.Errorf("feature %s has zero scale", name)
		}
	}
	if a.Kind == KindClassifier && (a.Threshold <= 0 || a.Threshold >= 1) {
		return fmt.Errorf("threshold %v outside (0, 1)", a.Threshold)
	}
	return nil
}

// decision evaluates the linear function over a feature row
func (a *LinearArtifact) decision(row map[string]interface{}) (float64, error) {
	if err := CheckSchema(a.Features, row); err != nil {
		return 0, err
	}

	z := a.Intercept
	for _, name := range a.Features {
		value := row[name]
		if term, ok := a.Numeric[name]; ok {
			x, ok := value.(float64)
			if !ok {
				return 0, fmt.Errorf("%w: feature %s must be numeric, got %T", ErrSchemaMismatch, name, value)
			}
			z += term.Weight * (x - term.Mean) / term.Scale
			continue
		}

		label, ok := value.(string)
		if !ok {
			return 0, fmt.Errorf("%w: feature %s must be a label, got %T", ErrSchemaMismatch, name, value)
		}
		z += a.Categorical[name][label]
	}

	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, fmt.Errorf("non-finite decision value for %s", a.Kind)
	}
	return z, nil
}

// ArtifactModel serves predictions from two local estimator exports
type ArtifactModel struct {
	classifier *LinearArtifact
	regressor  *LinearArtifact
}

// NewArtifactModel pairs an already loaded classifier and regressor
func NewArtifactModel(classifier, regressor *LinearArtifact) *ArtifactModel {
	return &ArtifactModel{classifier: classifier, regressor: regressor}
}

// LoadArtifacts reads both estimators. Any error is meant to stop startup.
func LoadArtifacts(classifierPath, regressorPath string) (*ArtifactModel, error) {
	clf, err := LoadArtifact(classifierPath, KindClassifier)
	if err != nil {
		return nil, err
	}
	reg, err := LoadArtifact(regressorPath, KindRegressor)
	if err != nil {
		return nil, err
	}
	return NewArtifactModel(clf, reg), nil
}

// PredictLabel applies the classifier threshold to the sigmoid of its decision
func (m *ArtifactModel) PredictLabel(_ context.Context, features models.FeatureVector) (models.Verdict, error) {
	z, err := m.classifier.decision(features.Row())
	if err != nil {
		return models.NotGood, err
	}
	if sigmoid(z) >= m.classifier.Threshold {
		return models.Good, nil
	}
	return models.NotGood, nil
}

// PredictPrice returns the regressor's decision value in lakhs
func (m *ArtifactModel) PredictPrice(_ context.Context, features models.FeatureVector) (float64, error) {
	return m.regressor.decision(features.Row())
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
