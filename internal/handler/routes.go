package handler

import (
	"log/slog"
	"net/http"

	"carbonintensity/internal/observability"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig collects what the HTTP surface is built from
type RouterConfig struct {
	Intensities *IntensityHandler
	Events      http.Handler // SSE stream; omitted when nil
	Store       Pinger
	Metrics     *observability.Metrics
	Logger      *slog.Logger
	CORSOrigin  string
}

// NewRouter registers every route and wraps the mux in the middleware chain
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	// Intensity endpoints
	mux.HandleFunc("GET /intensities", cfg.Intensities.List)
	mux.HandleFunc("POST /intensities", cfg.Intensities.Create)
	mux.HandleFunc("PUT /intensities/{id}", cfg.Intensities.Update)
	mux.HandleFunc("DELETE /intensities/{id}", cfg.Intensities.Delete)

	// Live updates
	if cfg.Events != nil {
		mux.Handle("GET /events", cfg.Events)
	}

	// Operations
	mux.HandleFunc("GET /healthz", Healthz)
	if cfg.Store != nil {
		mux.HandleFunc("GET /readyz", Readyz(cfg.Store))
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	return Chain(mux,
		Recover(logger),
		CORS(cfg.CORSOrigin),
		Logger(logger),
		Metrics(cfg.Metrics),
	)
}
