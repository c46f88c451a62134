package api

import (
	"net/http"

	"github.com/grimkor/fs-log-parser/internal/notify"
	"github.com/grimkor/fs-log-parser/internal/storage"
)

// Router holds the HTTP routes and dependencies
type Router struct {
	mux   *http.ServeMux
	store *storage.Store
	hub   *notify.Hub
}

// NewRouter creates a new HTTP router
func NewRouter(store *storage.Store, hub *notify.Hub) *Router {
	r := &Router{
		mux:   http.NewServeMux(),
		store: store,
		hub:   hub,
	}

	r.mux.HandleFunc("GET /api/stats", r.handleStats)
	r.mux.HandleFunc("GET /api/matches", r.handleMatches)
	r.mux.HandleFunc("GET /api/matches/{id}", r.handleMatch)
	r.mux.HandleFunc("GET /api/config", r.handleGetConfig)
	r.mux.HandleFunc("PUT /api/config", r.handleSetConfig)

	// WebSocket push endpoint
	r.mux.HandleFunc("GET /ws", r.handleWebSocket)

	// Health check
	r.mux.HandleFunc("GET /health", r.handleHealth)

	return r
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// CORS headers for the local UI
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if req.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.mux.ServeHTTP(w, req)
}
