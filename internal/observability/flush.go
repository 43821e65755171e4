package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
)

// FlushTelemetry logs a final prediction tally and flushes the logger.
// Metrics are pull-based, so the tally is the only record of counts after exit.
// Call during graceful shutdown after in-flight requests have drained.
func FlushTelemetry(ctx context.Context, logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	logger.Info("prediction totals",
		zap.Float64("success", counterValue(PredictionsTotal.WithLabelValues("success"))),
		zap.Float64("error", counterValue(PredictionsTotal.WithLabelValues("error"))),
		zap.Float64("unavailable", counterValue(PredictionsTotal.WithLabelValues("unavailable"))),
		zap.Float64("csv_exports", counterValue(CSVExportsTotal)),
	)
	if err := logger.Sync(); err != nil {
		return fmt.Errorf("flush logs: %w", err)
	}
	return nil
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil || m.Counter == nil {
		return 0
	}
	return m.Counter.GetValue()
}
