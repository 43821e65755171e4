package validation

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/kjstillabower/solar-power-service/internal/models"
)

// ErrFieldNotNumeric is returned when a submitted value does not parse as a float.
var ErrFieldNotNumeric = errors.New("value is not a number")

// ErrFieldOutOfRange is returned when a value lies outside the field's [Min, Max].
var ErrFieldOutOfRange = errors.New("value out of range")

// ErrUnknownField is returned when JSON input names a field the model does not take.
var ErrUnknownField = errors.New("unknown field")

// FieldError identifies the offending field. Unwraps to one of the sentinel errors above.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	f := lookup(e.Field)
	if errors.Is(e.Err, ErrFieldOutOfRange) && f != nil {
		return fmt.Sprintf("%s: %s must be between %g and %g", f.Label, e.Value, f.Min, f.Max)
	}
	return fmt.Sprintf("%s: %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ParseObservation builds an Observation from submitted form values keyed by field key.
// Absent or blank fields take their default, the same as an untouched slider.
// Boundary values are accepted as-is; nothing is clamped.
func ParseObservation(values url.Values) (models.Observation, error) {
	obs := models.DefaultObservation()
	for i, f := range models.Fields {
		raw := strings.TrimSpace(values.Get(f.Key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return models.Observation{}, &FieldError{Field: f.Key, Value: raw, Err: ErrFieldNotNumeric}
		}
		if !f.Contains(v) {
			return models.Observation{}, &FieldError{Field: f.Key, Value: raw, Err: ErrFieldOutOfRange}
		}
		obs[i] = v
	}
	return obs, nil
}

// ObservationFromMap is the JSON counterpart of ParseObservation. Absent keys take their
// default; an explicit null is rejected rather than read as zero.
func ObservationFromMap(in map[string]*float64) (models.Observation, error) {
	obs := models.DefaultObservation()
	for key, v := range in {
		i := models.FieldIndex(key)
		if i < 0 {
			return models.Observation{}, &FieldError{Field: key, Value: formatPtr(v), Err: ErrUnknownField}
		}
		if v == nil {
			return models.Observation{}, &FieldError{Field: key, Value: "null", Err: ErrFieldNotNumeric}
		}
		obs[i] = *v
	}
	if err := ValidateObservation(obs); err != nil {
		return models.Observation{}, err
	}
	return obs, nil
}

func formatPtr(v *float64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// ValidateObservation checks every value against its field range.
func ValidateObservation(obs models.Observation) error {
	for i, f := range models.Fields {
		v := obs[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &FieldError{Field: f.Key, Value: strconv.FormatFloat(v, 'g', -1, 64), Err: ErrFieldNotNumeric}
		}
		if !f.Contains(v) {
			return &FieldError{Field: f.Key, Value: strconv.FormatFloat(v, 'g', -1, 64), Err: ErrFieldOutOfRange}
		}
	}
	return nil
}

func lookup(key string) *models.Field {
	if i := models.FieldIndex(key); i >= 0 {
		return &models.Fields[i]
	}
	return nil
}
