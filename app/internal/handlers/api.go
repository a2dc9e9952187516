package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"statuswatch/app/internal/history"
	"statuswatch/app/internal/status"
)

// parseDays reads an optional ?days=N, clamped to 1..365. Zero means the
// store's configured window.
func parseDays(r *http.Request) int {
	q := r.URL.Query().Get("days")
	if q == "" {
		return 0
	}
	n, err := strconv.Atoi(q)
	if err != nil {
		return 0
	}
	if n < 1 {
		n = 1
	}
	if n > 365 {
		n = 365
	}
	return n
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleStatus returns the status array for every configured service.
func HandleStatus(presenter *status.Presenter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview, err := presenter.Overview(r.Context(), parseDays(r))
		if err != nil {
			log.Printf("status read failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, overview.Services)
	}
}

// HandleOverview returns the services plus the overall banner state.
func HandleOverview(presenter *status.Presenter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview, err := presenter.Overview(r.Context(), parseDays(r))
		if err != nil {
			log.Printf("overview read failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, overview)
	}
}

// HandleServiceStatus returns the payload for a single service:
// GET /api/status/{name}.
func HandleServiceStatus(presenter *status.Presenter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/api/status/")
		if name == "" || strings.Contains(name, "/") {
			http.NotFound(w, r)
			return
		}
		st, err := presenter.Service(r.Context(), name, parseDays(r))
		if errors.Is(err, status.ErrUnknownService) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown service"})
			return
		}
		if err != nil {
			log.Printf("service status read failed service=%s err=%v", name, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// HandleHealthz reports whether the process and its store are usable.
func HandleHealthz(store *history.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			log.Printf("healthz store ping failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
