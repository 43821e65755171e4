package chart

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/kjstillabower/solar-power-service/internal/models"
	"github.com/kjstillabower/solar-power-service/internal/report"
)

func TestRenderPNG_Defaults(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPNG(&buf, report.Bars(models.DefaultObservation()), Options{}); err != nil {
		t.Fatalf("RenderPNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != defaultWidth || b.Dy() != defaultHeight {
		t.Errorf("bounds = %v, want %dx%d", b, defaultWidth, defaultHeight)
	}
}

func TestRender_BarColours(t *testing.T) {
	bars := report.Bars(models.DefaultObservation())
	img, err := Render(bars, Options{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	// Wind direction (180) is the tallest bar; a pixel just above the axis in its
	// slot must carry its palette colour.
	plotW := defaultWidth - legendWidth - 2*margin
	slot := plotW / len(bars)
	x := margin + 2*slot + slot/2
	lo, hi := valueRange(bars)
	scale := float64(defaultHeight-2*margin) / (hi - lo)
	baseline := defaultHeight - margin - int(-lo*scale+0.5)
	if got := img.RGBAAt(x, baseline-2); got != colorAt(2) {
		t.Errorf("pixel in wind direction bar = %v, want %v", got, colorAt(2))
	}
}

func TestRender_NegativeValues(t *testing.T) {
	obs := models.DefaultObservation()
	obs[1] = -30
	if _, err := Render(report.Bars(obs), Options{}); err != nil {
		t.Fatalf("Render() with negative temperature error = %v", err)
	}
}

func TestRender_AllZero(t *testing.T) {
	var obs models.Observation
	if _, err := Render(report.Bars(obs), Options{}); err != nil {
		t.Fatalf("Render() all zero error = %v", err)
	}
}

func TestRender_Errors(t *testing.T) {
	if _, err := Render(nil, Options{}); err == nil {
		t.Error("Render(nil) error = nil, want error")
	}
	if _, err := Render(report.Bars(models.DefaultObservation()), Options{Width: 100, Height: 50}); err == nil {
		t.Error("Render(too small) error = nil, want error")
	}
}

func TestValueRange(t *testing.T) {
	lo, hi := valueRange([]report.Bar{{Value: 10}, {Value: 5}})
	if lo != 0 || hi != 11 {
		t.Errorf("valueRange(positive) = (%v, %v), want (0, 11)", lo, hi)
	}
	lo, hi = valueRange([]report.Bar{{Value: -10}, {Value: 10}})
	if lo != -12 || hi != 12 {
		t.Errorf("valueRange(mixed) = (%v, %v), want (-12, 12)", lo, hi)
	}
}
