package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kjstillabower/solar-power-service/internal/config"
	"github.com/kjstillabower/solar-power-service/internal/degraded"
)

func TestLoadModel_Shipped(t *testing.T) {
	degraded.Reset()
	cfg := &config.Config{ModelPath: filepath.Join("..", "..", "models", "best_model.json"), ModelRequired: true}

	model, err := loadModel(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("loadModel() error = %v", err)
	}
	if model == nil {
		t.Fatal("loadModel() returned nil model")
	}
	if degraded.ModelUnavailable() {
		t.Error("model flagged unavailable after successful load")
	}
}

func TestLoadModel_MissingOptional(t *testing.T) {
	degraded.Reset()
	defer degraded.Reset()
	core, logs := observer.New(zapcore.ErrorLevel)
	cfg := &config.Config{ModelPath: filepath.Join(t.TempDir(), "absent.json")}

	model, err := loadModel(cfg, zap.New(core))
	if err != nil {
		t.Fatalf("loadModel() error = %v, want nil when model is optional", err)
	}
	if model != nil {
		t.Errorf("loadModel() = %v, want nil predictor", model)
	}
	if !degraded.ModelUnavailable() {
		t.Error("model not flagged unavailable")
	}
	if logs.Len() != 1 {
		t.Errorf("got %d error logs, want 1", logs.Len())
	}
}

func TestLoadModel_MissingRequired(t *testing.T) {
	cfg := &config.Config{ModelPath: filepath.Join(t.TempDir(), "absent.json"), ModelRequired: true}

	_, err := loadModel(cfg, zap.NewNop())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("loadModel() error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoadModel_CorruptOptional(t *testing.T) {
	degraded.Reset()
	defer degraded.Reset()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(`{"family":"forest"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	model, err := loadModel(&config.Config{ModelPath: path}, zap.NewNop())
	if err != nil || model != nil {
		t.Errorf("loadModel() = (%v, %v), want (nil, nil)", model, err)
	}
}
