package prediction

import (
	"context"
	"errors"
	"fmt"
	"investadvisor/server/internal/models"
	"sort"
)

var (
	ErrSchemaMismatch  = errors.New("feature schema mismatch")
	ErrModelInvocation = errors.New("model invocation failed")
)

// Model is the pair of pre-trained estimators behind an assessment
type Model interface {
	// PredictLabel runs the good-investment classifier
	PredictLabel(ctx context.Context, features models.FeatureVector) (models.Verdict, error)
	// PredictPrice runs the future price regressor, in lakhs
	PredictPrice(ctx context.Context, features models.FeatureVector) (float64, error)
}

// CheckSchema verifies that row carries exactly the expected feature names.
// Order does not matter.
func CheckSchema(expected []string, row map[string]interface{}) error {
	want := make(map[string]struct{}, len(expected))
	for _, name := range expected {
		want[name] = struct{}{}
	}

	var missing, unexpected []string
	for name := range want {
		if _, ok := row[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range row {
		if _, ok := want[name]; !ok {
			unexpected = append(unexpected, name)
		}
	}

	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(unexpected)
	return fmt.Errorf("%w: missing %v, unexpected %v", ErrSchemaMismatch, missing, unexpected)
}
