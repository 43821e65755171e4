package http

import (
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/solar-power-service/internal/observability"
)

// RouterConfig selects optional routes and per-route limits.
type RouterConfig struct {
	RequestTimeout time.Duration
	TestingMode    bool
}

// NewRouter wires every route. Prediction routes sit behind the rate limiter and timeout.
func NewRouter(h *Handler, logger *zap.Logger, cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)

	router.HandleFunc("/", h.GetIndex).Methods("GET")
	router.HandleFunc("/health", h.GetHealth).Methods("GET")
	router.HandleFunc("/api/fields", h.GetFields).Methods("GET")
	router.HandleFunc("/chart.png", h.GetChart).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())

	predict := router.NewRoute().Subrouter()
	predict.Use(RateLimitMiddleware(h.rateLimiter))
	if cfg.RequestTimeout > 0 {
		predict.Use(TimeoutMiddleware(cfg.RequestTimeout))
	}
	predict.HandleFunc("/predict", h.PostPredict).Methods("POST")
	predict.HandleFunc("/predict.csv", h.PostExportCSV).Methods("POST")
	predict.HandleFunc("/api/predict", h.PostAPIPredict).Methods("POST")

	if cfg.TestingMode {
		logger.Warn("Testing mode enabled; /test endpoint exposed")
		router.HandleFunc("/test", h.GetTestStatus).Methods("GET")
		router.HandleFunc("/test/{action}", h.PostTestAction).Methods("POST")
	}
	return router
}
