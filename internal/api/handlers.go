package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleStats returns the per-match-type win/loss summary
func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) {
	summary, err := r.store.WinLossSummary(req.Context())
	if err != nil {
		log.Printf("Error computing win/loss summary: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleMatches returns recent matches with their games
func (r *Router) handleMatches(w http.ResponseWriter, req *http.Request) {
	limit := 50
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	matches, err := r.store.RecentMatches(req.Context(), limit)
	if err != nil {
		log.Printf("Error listing matches: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// handleMatch returns a single match row
func (r *Router) handleMatch(w http.ResponseWriter, req *http.Request) {
	match, err := r.store.GetMatch(req.Context(), req.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	if err != nil {
		log.Printf("Error fetching match: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch match")
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// handleGetConfig returns the persisted settings
func (r *Router) handleGetConfig(w http.ResponseWriter, req *http.Request) {
	settings, err := r.store.GetConfig(req.Context())
	if err != nil {
		log.Printf("Error reading config: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read config")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleSetConfig writes settings, last write wins
func (r *Router) handleSetConfig(w http.ResponseWriter, req *http.Request) {
	var settings map[string]string
	if err := json.NewDecoder(req.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(settings) == 0 {
		writeError(w, http.StatusBadRequest, "no settings provided")
		return
	}

	if err := r.store.SetConfig(req.Context(), settings); err != nil {
		log.Printf("Error writing config: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to write config")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleWebSocket subscribes the connection to live updates
func (r *Router) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	r.hub.ServeWS(w, req)
}

// handleHealth is a basic liveness check
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
