package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

type roomsResponse struct {
	ActiveRooms int `json:"active_rooms"`
}

type matchesResponse struct {
	Matches []*entity.MatchRecord `json:"matches"`
}

// RoomsHandler reports how many rooms are live.
func (that *Server) RoomsHandler(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, roomsResponse{ActiveRooms: that.uGame.ActiveRooms()})
}

// MatchesHandler lists recently finished matches, newest first. An optional
// ?limit= narrows the configured maximum.
func (that *Server) MatchesHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "MatchesHandler")

	limit := that.matchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}

		limit = min(n, that.matchLimit)
	}

	matches, err := that.uGame.RecentMatches(r.Context(), limit)
	if err != nil {
		log.Error("failed to get recent matches", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if matches == nil {
		matches = []*entity.MatchRecord{}
	}

	that.writeJSON(w, http.StatusOK, matchesResponse{Matches: matches})
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
