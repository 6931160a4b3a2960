package api

import (
	"net/http"

	"github.com/algoritmia-up/portal/internal/domain/listing"
)

type syncResponse struct {
	Members int `json:"members"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, listing.Leaderboard)
	if err != nil {
		s.fail(r.Context(), w, "leaderboard", err)
		return
	}
	if q.refresh {
		// A failed sync is reported in the body's error field.
		_, _ = s.deps.SyncLeaderboard(r.Context(), credentials(r))
	}
	board := s.deps.Leaderboard(q.search, q.sort, s.currentUserID(r))
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleSyncLeaderboard(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.SyncLeaderboard(r.Context(), credentials(r))
	if err != nil {
		s.fail(r.Context(), w, "sync_leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, syncResponse{Members: n})
}

func (s *Server) handleTiers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, items(s.deps.Tiers()))
}
