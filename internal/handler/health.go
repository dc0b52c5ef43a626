package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether the record store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports liveness
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "healthy"}, http.StatusOK)
}

// Readyz reports ready once the store answers a ping
func Readyz(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			writeJSON(w, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			}, http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, map[string]string{"status": "ready"}, http.StatusOK)
	}
}
