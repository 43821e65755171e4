package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/solar-power-service/internal/config"
	"github.com/kjstillabower/solar-power-service/internal/degraded"
	httphandler "github.com/kjstillabower/solar-power-service/internal/http"
	"github.com/kjstillabower/solar-power-service/internal/lifecycle"
	"github.com/kjstillabower/solar-power-service/internal/observability"
	"github.com/kjstillabower/solar-power-service/internal/predictor"
	"github.com/kjstillabower/solar-power-service/internal/report"
	"github.com/kjstillabower/solar-power-service/internal/service"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	model, err := loadModel(cfg, logger)
	if err != nil {
		logger.Fatal("model", zap.String("path", cfg.ModelPath), zap.Error(err))
	}

	predictions := service.NewPredictionService(model, report.NewFactPicker(cfg.FactSeed))

	healthConfig := &httphandler.HealthConfig{
		OverloadWindow:       cfg.OverloadWindow,
		OverloadThresholdPct: cfg.OverloadThresholdPct,
		RateLimitRPS:         cfg.RateLimitRPS,
		RateLimitBurst:       cfg.RateLimitBurst,
		DegradedWindow:       cfg.DegradedWindow,
		DegradedErrorPct:     cfg.DegradedErrorPct,
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	handler := httphandler.NewHandler(predictions, healthConfig, logger, limiter)

	observability.RegisterWindowGauges(cfg.OverloadWindow)

	router := httphandler.NewRouter(handler, logger, httphandler.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		TestingMode:    cfg.TestingMode,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	lifecycle.MarkStarted(time.Now())
	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// loadModel reads the model artifact. Failure is fatal only when model.required is set;
// otherwise it returns a nil Predictor and the form is served with predictions disabled.
func loadModel(cfg *config.Config, logger *zap.Logger) (predictor.Predictor, error) {
	linear, err := predictor.LoadFile(cfg.ModelPath)
	if err != nil {
		if cfg.ModelRequired {
			return nil, err
		}
		degraded.SetModelUnavailable(true)
		observability.SetModelLoaded(false)
		logger.Error("model unavailable; serving form without predictions", zap.String("path", cfg.ModelPath), zap.Error(err))
		return nil, nil
	}
	observability.SetModelLoaded(true)
	logger.Info("model loaded", zap.String("path", cfg.ModelPath))
	return linear, nil
}
