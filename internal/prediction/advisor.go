package prediction

import (
	"context"
	"errors"
	"fmt"
	"investadvisor/server/internal/features"
	"investadvisor/server/internal/locality"
	"investadvisor/server/internal/models"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// Recorder receives a record for every successful assessment
type Recorder interface {
	Push(records []*models.PredictionRecord) error
}

// Advisor derives features for a property and runs both models on them
type Advisor struct {
	reference     *locality.Reference
	model         Model
	referenceYear int
	recorder      Recorder
	logger        *logrus.Logger
	now           func() time.Time
}

func NewAdvisor(reference *locality.Reference, model Model, referenceYear int, logger *logrus.Logger) *Advisor {
	return &Advisor{
		reference:     reference,
		model:         model,
		referenceYear: referenceYear,
		logger:        logger,
		now:           time.Now,
	}
}

// SetRecorder enables history recording
func (a *Advisor) SetRecorder(recorder Recorder) {
	a.recorder = recorder
}

func (a *Advisor) Reference() *locality.Reference {
	return a.reference
}

// Assess evaluates one property. Model failures, including panics inside a
// model, come back as errors wrapping ErrModelInvocation.
func (a *Advisor) Assess(ctx context.Context, in models.PropertyInput) (*models.Assessment, error) {
	derived := features.Derive(in, a.reference, a.referenceYear)

	verdict, err := invoke(a.logger, func() (models.Verdict, error) {
		return a.model.PredictLabel(ctx, derived.Vector)
	})
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	futurePrice, err := invoke(a.logger, func() (float64, error) {
		return a.model.PredictPrice(ctx, derived.Vector)
	})
	if err != nil {
		return nil, fmt.Errorf("regressor: %w", err)
	}

	assessment := &models.Assessment{
		Features:        derived.Vector,
		PricePerSqFt:    derived.PricePerSqFt,
		LocalityMedian:  derived.LocalityMedian,
		PriceVsMedian:   derived.PriceVsMedian,
		LocalityMatched: derived.LocalityMatched,
		Verdict:         verdict,
		FuturePrice:     futurePrice,
		Comparison:      Comparison(derived.LocalityMedian, derived.PricePerSqFt),
	}

	a.logger.WithFields(logrus.Fields{
		"city":             in.City,
		"locality":         in.Locality,
		"locality_matched": derived.LocalityMatched,
		"price_per_sqft":   derived.PricePerSqFt,
		"verdict":          assessment.Verdict.String(),
		"future_price":     futurePrice,
	}).Info("Assessed property")

	a.record(in, assessment)
	return assessment, nil
}

func invoke[T any](logger *logrus.Logger, call func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Model panicked")
			var zero T
			value, err = zero, fmt.Errorf("%w: panic: %v", ErrModelInvocation, r)
		}
	}()

	value, err = call()
	if err != nil && !errors.Is(err, ErrModelInvocation) {
		err = fmt.Errorf("%w: %w", ErrModelInvocation, err)
	}
	return value, err
}

func (a *Advisor) record(in models.PropertyInput, assessment *models.Assessment) {
	if a.recorder == nil {
		return
	}
	record := models.NewPredictionRecord(in, assessment, a.now())
	if err := a.recorder.Push([]*models.PredictionRecord{record}); err != nil {
		a.logger.WithError(err).Warn("Dropped prediction record")
	}
}

// Comparison builds the two bars comparing a property's price per sqft with
// its locality median
func Comparison(localityMedian, pricePerSqFt float64) []models.Bar {
	scale := math.Max(math.Abs(localityMedian), math.Abs(pricePerSqFt))
	percent := func(v float64) float64 {
		if scale == 0 {
			return 0
		}
		return math.Abs(v) / scale * 100
	}

	return []models.Bar{
		{Label: "Median Locality Price", Value: localityMedian, Percent: percent(localityMedian), Color: "gray"},
		{Label: "Property Price per SqFt", Value: pricePerSqFt, Percent: percent(pricePerSqFt), Color: "blue"},
	}
}
