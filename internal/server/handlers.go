package server

import (
	"net/http"
	"strconv"
	"time"

	"balance-scale/internal/db"
	"balance-scale/internal/web"

	"github.com/rs/zerolog/log"
)

const maxMatchesLimit = 100

type matchResponse struct {
	MatchID    string        `json:"matchId"`
	RoomCode   string        `json:"roomCode"`
	Rounds     int           `json:"rounds"`
	WinnerName string        `json:"winnerName"`
	Standings  []db.Standing `json:"standings"`
	FinishedAt string        `json:"finishedAt"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms": s.store.ListRoomSummaries(),
	})
}

func (s *Server) handleRoomsPage(w http.ResponseWriter, r *http.Request) {
	summaries := s.store.ListRoomSummaries()
	rows := make([]web.RoomRow, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, web.RoomRow{
			Code:    summary.Code,
			Status:  string(summary.Status),
			Players: summary.Players,
			Active:  summary.Active,
			Round:   summary.Round,
		})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := web.RoomsPage(rows).Render(r.Context(), w); err != nil {
		log.Error().Err(err).Msg("render rooms page failed")
	}
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "match archive disabled")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(parsed, maxMatchesLimit)
	}
	matches, err := db.RecentMatches(r.Context(), s.db, limit)
	if err != nil {
		log.Error().Err(err).Msg("list matches failed")
		writeError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}
	out := make([]matchResponse, 0, len(matches))
	for _, match := range matches {
		out = append(out, newMatchResponse(match))
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": out})
}

func newMatchResponse(match db.Match) matchResponse {
	standings, err := match.DecodeStandings()
	if err != nil {
		log.Warn().Err(err).Str("match", match.MatchID).Msg("decode standings failed")
	}
	return matchResponse{
		MatchID:    match.MatchID,
		RoomCode:   match.RoomCode,
		Rounds:     match.Rounds,
		WinnerName: match.WinnerName,
		Standings:  standings,
		FinishedAt: match.FinishedAt.UTC().Format(time.RFC3339),
	}
}
