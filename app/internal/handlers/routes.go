package handlers

import (
	"net/http"

	"statuswatch/app/internal/history"
	"statuswatch/app/internal/status"
)

// SetupRoutes configures the public HTTP surface.
func SetupRoutes(presenter *status.Presenter, store *history.Store) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", HandleStatus(presenter))
	mux.HandleFunc("/api/status/", HandleServiceStatus(presenter))
	mux.HandleFunc("/api/overview", HandleOverview(presenter))
	mux.HandleFunc("/healthz", HandleHealthz(store))
	return mux
}
