package predictor

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const sampleModel = `{
  "family": "linear",
  "features": ["distance_to_solar_noon","temperature","wind_direction","wind_speed","sky_cover","visibility","humidity","average_wind_speed","average_pressure"],
  "intercept": 100,
  "coefficients": [1, 2, 0, 0, 0, 0, 0, 0, 0]
}`

func writeModel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadFile_Predict(t *testing.T) {
	m, err := LoadFile(writeModel(t, sampleModel))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	got, err := m.Predict(context.Background(), []float64{1, 10, 0, 0, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if got != 121 {
		t.Errorf("Predict() = %v, want 121", got)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadFile(missing) error = %v, want fs.ErrNotExist", err)
	}
}

func TestDecode_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "\x80\x04pickle"},
		{"wrong family", `{"family":"forest","coefficients":[1,2,3,4,5,6,7,8,9]}`},
		{"short coefficients", `{"family":"linear","coefficients":[1,2,3]}`},
		{"wrong feature order", `{"family":"linear","features":["temperature","distance_to_solar_noon","wind_direction","wind_speed","sky_cover","visibility","humidity","average_wind_speed","average_pressure"],"coefficients":[1,2,3,4,5,6,7,8,9]}`},
		{"zero scale", `{"family":"linear","coefficients":[1,2,3,4,5,6,7,8,9],"scaler":{"mean":[0,0,0,0,0,0,0,0,0],"scale":[1,1,1,0,1,1,1,1,1]}}`},
		{"short scaler", `{"family":"linear","coefficients":[1,2,3,4,5,6,7,8,9],"scaler":{"mean":[0],"scale":[1]}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.data))
			if !errors.Is(err, ErrCorruptModel) {
				t.Errorf("Decode() error = %v, want ErrCorruptModel", err)
			}
		})
	}
}

func TestPredict_Scaler(t *testing.T) {
	m, err := Decode([]byte(`{"family":"linear","intercept":1,"coefficients":[2,0,0,0,0,0,0,0,0],
		"scaler":{"mean":[1,0,0,0,0,0,0,0,0],"scale":[0.5,1,1,1,1,1,1,1,1]}}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	// (2 - 1) / 0.5 = 2; 1 + 2*2 = 5
	got, err := m.Predict(context.Background(), []float64{2, 0, 0, 0, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if got != 5 {
		t.Errorf("Predict() = %v, want 5", got)
	}
}

func TestPredict_WrongShape(t *testing.T) {
	m, _ := Decode([]byte(sampleModel))
	_, err := m.Predict(context.Background(), []float64{1, 2, 3})
	if !errors.Is(err, ErrShape) {
		t.Errorf("Predict(len 3) error = %v, want ErrShape", err)
	}
}

func TestPredict_NonFinite(t *testing.T) {
	m, _ := Decode([]byte(`{"family":"linear","coefficients":[1.7e308,1.7e308,0,0,0,0,0,0,0]}`))
	_, err := m.Predict(context.Background(), []float64{10, 10, 0, 0, 0, 0, 0, 0, 0})
	if !errors.Is(err, ErrNonFinite) {
		t.Errorf("Predict(overflow) error = %v, want ErrNonFinite", err)
	}
}

func TestPredict_CancelledContext(t *testing.T) {
	m, _ := Decode([]byte(sampleModel))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Predict(ctx, make([]float64, 9)); !errors.Is(err, context.Canceled) {
		t.Errorf("Predict(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestFunc_Adapter(t *testing.T) {
	var p Predictor = Func(func(ctx context.Context, features []float64) (float64, error) {
		return math.Pi, nil
	})
	got, err := p.Predict(context.Background(), nil)
	if err != nil || got != math.Pi {
		t.Errorf("Func.Predict() = %v, %v", got, err)
	}
}

func TestLoadFile_ShippedModel(t *testing.T) {
	m, err := LoadFile(filepath.Join("..", "..", "models", "best_model.json"))
	if err != nil {
		t.Fatalf("LoadFile(shipped) error = %v", err)
	}
	got, err := m.Predict(context.Background(), []float64{1.57, 25, 180, 3, 2, 10, 60, 10, 29.92})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if math.Abs(got-1497.5) > 1e-6 {
		t.Errorf("Predict(defaults) = %v, want 1497.5", got)
	}
}
