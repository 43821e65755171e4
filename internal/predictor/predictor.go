package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/kjstillabower/solar-power-service/internal/models"
)

// ErrCorruptModel is returned when the model file exists but cannot be used.
var ErrCorruptModel = errors.New("model file is corrupt or incompatible")

// ErrShape is returned when the feature vector length does not match the model.
var ErrShape = errors.New("feature vector has wrong shape")

// ErrNonFinite is returned when the model produces NaN or Inf.
var ErrNonFinite = errors.New("model produced a non-finite value")

// Predictor maps one feature vector to a predicted power value in Joules.
// Implementations must be safe for concurrent use.
type Predictor interface {
	Predict(ctx context.Context, features []float64) (float64, error)
}

// Func adapts a plain function to Predictor. Handy for stubs.
type Func func(ctx context.Context, features []float64) (float64, error)

func (f Func) Predict(ctx context.Context, features []float64) (float64, error) {
	return f(ctx, features)
}

const familyLinear = "linear"

// artifact is the on-disk representation of a fitted model.
type artifact struct {
	Family       string    `json:"family"`
	Features     []string  `json:"features"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Scaler       *struct {
		Mean  []float64 `json:"mean"`
		Scale []float64 `json:"scale"`
	} `json:"scaler,omitempty"`
}

// LinearModel is a fitted linear regressor with optional standard scaling.
// Immutable after LoadFile returns.
type LinearModel struct {
	features     []string
	intercept    float64
	coefficients []float64
	mean         []float64
	scale        []float64
}

// LoadFile reads a serialized model. A missing file yields an error wrapping fs.ErrNotExist;
// anything unreadable as a model yields ErrCorruptModel.
func LoadFile(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return Decode(data)
}

// Decode parses a model artifact from raw bytes.
func Decode(data []byte) (*LinearModel, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
	}
	if a.Family != familyLinear {
		return nil, fmt.Errorf("%w: unsupported model family %q", ErrCorruptModel, a.Family)
	}
	n := models.FieldCount
	if len(a.Coefficients) != n {
		return nil, fmt.Errorf("%w: %d coefficients, want %d", ErrCorruptModel, len(a.Coefficients), n)
	}
	if len(a.Features) != 0 {
		if len(a.Features) != n {
			return nil, fmt.Errorf("%w: %d feature names, want %d", ErrCorruptModel, len(a.Features), n)
		}
		for i, name := range a.Features {
			if name != models.Fields[i].Key {
				return nil, fmt.Errorf("%w: feature %d is %q, want %q", ErrCorruptModel, i, name, models.Fields[i].Key)
			}
		}
	}
	m := &LinearModel{
		features:     a.Features,
		intercept:    a.Intercept,
		coefficients: a.Coefficients,
	}
	if a.Scaler != nil {
		if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n {
			return nil, fmt.Errorf("%w: scaler needs %d means and scales", ErrCorruptModel, n)
		}
		for i, s := range a.Scaler.Scale {
			if s == 0 {
				return nil, fmt.Errorf("%w: scaler scale[%d] is zero", ErrCorruptModel, i)
			}
		}
		m.mean = a.Scaler.Mean
		m.scale = a.Scaler.Scale
	}
	return m, nil
}

// Predict returns intercept + sum(coef[i] * x[i]), with x standardised first when the
// model carries a scaler.
func (m *LinearModel) Predict(ctx context.Context, features []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(features) != len(m.coefficients) {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrShape, len(features), len(m.coefficients))
	}
	y := m.intercept
	for i, x := range features {
		if m.scale != nil {
			x = (x - m.mean[i]) / m.scale[i]
		}
		y += m.coefficients[i] * x
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, ErrNonFinite
	}
	return y, nil
}
