// Package report turns one observation and its predicted power into what the page shows:
// the formatted value, the display band, chart bars, a fact, and the CSV export.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kjstillabower/solar-power-service/internal/models"
)

// Unit is the label appended to every predicted value.
const Unit = "Joules"

// Band multipliers. The band is cosmetic, a fixed ±10% around the prediction, not a
// statistical interval.
const (
	BandLowerFactor = 0.9
	BandUpperFactor = 1.1
)

// Prediction is a model output plus its display band.
type Prediction struct {
	Value float64 `json:"prediction"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// NewPrediction derives the display band from p. Negative values pass through, so Lower > Upper there.
func NewPrediction(p float64) Prediction {
	return Prediction{
		Value: p,
		Lower: p * BandLowerFactor,
		Upper: p * BandUpperFactor,
	}
}

// FormatJoules renders v to two decimals with the unit label.
func FormatJoules(v float64) string {
	return fmt.Sprintf("%.2f %s", v, Unit)
}

// Text is the headline sentence shown after a successful prediction.
func (p Prediction) Text() string {
	return "The predicted power generation is: " + FormatJoules(p.Value)
}

// BandText describes the display band.
func (p Prediction) BandText() string {
	return fmt.Sprintf("%.2f to %.2f %s", p.Lower, p.Upper, Unit)
}

// Bar is one category of the input chart.
type Bar struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Bars maps each field label to its raw input value, in field order.
func Bars(obs models.Observation) []Bar {
	bars := make([]Bar, models.FieldCount)
	for i, f := range models.Fields {
		bars[i] = Bar{Key: f.Key, Label: f.Label, Value: obs[i]}
	}
	return bars
}

// Result is everything rendered after a successful prediction.
type Result struct {
	Observation models.Observation
	Prediction  Prediction
	Bars        []Bar
	Fact        string
}

// NewResult assembles a Result for a successful prediction.
func NewResult(obs models.Observation, p float64, fact string) Result {
	return Result{
		Observation: obs,
		Prediction:  NewPrediction(p),
		Bars:        Bars(obs),
		Fact:        fact,
	}
}

// formatNumber writes v with shortest round-trip digits, a trailing ".0" for integral
// values, and exponent form outside [1e-4, 1e16).
func formatNumber(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".nN") {
		s += ".0"
	}
	return s
}
