package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/solar-power-service/internal/degraded"
	"github.com/kjstillabower/solar-power-service/internal/models"
	"github.com/kjstillabower/solar-power-service/internal/observability"
	"github.com/kjstillabower/solar-power-service/internal/predictor"
	"github.com/kjstillabower/solar-power-service/internal/report"
)

// ErrModelUnavailable is returned when the service runs without a loaded model.
var ErrModelUnavailable = errors.New("no prediction model is loaded")

// ErrPredictionFailed wraps any failure raised by the model itself.
var ErrPredictionFailed = errors.New("prediction failed")

// PredictionService runs collect -> predict -> present for one observation.
// The predictor is shared read-only across requests.
type PredictionService struct {
	predictor predictor.Predictor
	facts     *report.FactPicker
}

// NewPredictionService returns a service backed by p. A nil p puts the service in the
// no-model state where every Predict returns ErrModelUnavailable.
func NewPredictionService(p predictor.Predictor, facts *report.FactPicker) *PredictionService {
	if facts == nil {
		facts = report.NewFactPicker(0)
	}
	return &PredictionService{predictor: p, facts: facts}
}

// Available reports whether a model is loaded.
func (s *PredictionService) Available() bool {
	return s.predictor != nil
}

// loggerFromContext extracts the request-scoped zap.Logger if present.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.NewNop()
}

// Predict feeds obs to the model. On any failure it returns an empty Result so callers
// cannot render a chart, band or export for a failed call.
func (s *PredictionService) Predict(ctx context.Context, obs models.Observation) (report.Result, error) {
	logger := loggerFromContext(ctx)
	if s.predictor == nil {
		observability.RecordPrediction("unavailable", 0)
		degraded.RecordError()
		return report.Result{}, ErrModelUnavailable
	}

	start := time.Now()
	value, err := s.call(ctx, obs.Vector())
	elapsed := time.Since(start)
	if err != nil {
		observability.RecordPrediction("error", elapsed)
		degraded.RecordError()
		logger.Debug("prediction failed", zap.Error(err), zap.Duration("duration", elapsed))
		return report.Result{}, err
	}
	observability.RecordPrediction("success", elapsed)
	degraded.RecordSuccess()
	logger.Debug("prediction",
		zap.Float64s("features", obs[:]),
		zap.Float64("joules", value),
		zap.Duration("duration", elapsed))

	return report.NewResult(obs, value, s.facts.Pick()), nil
}

// Evaluate recomputes the prediction for obs without recording an outcome or picking a
// fact. CSV export uses it so predictionsTotal and the traffic window count one
// prediction per submit.
func (s *PredictionService) Evaluate(ctx context.Context, obs models.Observation) (report.Prediction, error) {
	if s.predictor == nil {
		return report.Prediction{}, ErrModelUnavailable
	}
	value, err := s.call(ctx, obs.Vector())
	if err != nil {
		loggerFromContext(ctx).Debug("evaluation failed", zap.Error(err))
		return report.Prediction{}, err
	}
	return report.NewPrediction(value), nil
}

// call invokes the model, converting a panic inside it into ErrPredictionFailed.
func (s *PredictionService) call(ctx context.Context, features []float64) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: model panicked: %v", ErrPredictionFailed, r)
		}
	}()
	value, err = s.predictor.Predict(ctx, features)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPredictionFailed, err)
	}
	return value, nil
}
