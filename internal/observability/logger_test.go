package observability

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		env    string
		expect zapcore.Level
	}{
		{"", zap.InfoLevel},
		{"DEBUG", zap.DebugLevel},
		{"debug", zap.DebugLevel},
		{"  warn  ", zap.WarnLevel},
		{"ERROR", zap.ErrorLevel},
		{"verbose", zap.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.env).Level(); got != tt.expect {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.env, got, tt.expect)
		}
	}
}

func TestParseLogFormat(t *testing.T) {
	for in, want := range map[string]string{"": "json", "json": "json", "Console": "console", " console ": "console", "text": "json"} {
		if got := parseLogFormat(in); got != want {
			t.Errorf("parseLogFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestNewLogger_ServiceField checks every entry carries the service name.
func TestNewLogger_ServiceField(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	core, logs := observer.New(zapcore.DebugLevel)
	logger, err := NewLogger(zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Debug("prediction", zap.Float64("joules", 1497.5))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["service"]; got != ServiceName {
		t.Errorf("service field = %v, want %s", got, ServiceName)
	}
}
