package api

import (
	"net/http"

	"github.com/algoritmia-up/portal/internal/session"
)

type sessionResponse struct {
	session.State
	CanMutate bool `json:"canMutate"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Resolve(r.Context(), credentials(r))
	writeJSON(w, http.StatusOK, sessionResponse{State: st, CanMutate: st.CanMutate()})
}

// currentUserID is the caller's id when the session resolves, else "".
func (s *Server) currentUserID(r *http.Request) string {
	st := s.sessions.Resolve(r.Context(), credentials(r))
	if st.Status != session.StatusAuthenticated {
		return ""
	}
	return st.UserID
}
