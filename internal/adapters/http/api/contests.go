package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/algoritmia-up/portal/internal/domain/listing"
	"github.com/algoritmia-up/portal/internal/domain/model"
)

func (s *Server) handleListContests(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, listing.Contests)
	if err != nil {
		s.fail(r.Context(), w, "list_contests", err)
		return
	}
	if q.refresh {
		if err := s.deps.Reload(r.Context(), credentials(r)); err != nil {
			s.fail(r.Context(), w, "list_contests", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, items(s.deps.Contests(q.search, q.sort)))
}

func (s *Server) handleCreateContest(w http.ResponseWriter, r *http.Request) {
	var in model.ContestInput
	if err := decodeJSON(r, &in); err != nil {
		s.fail(r.Context(), w, "create_contest", err)
		return
	}
	c, err := s.deps.CreateContest(r.Context(), credentials(r), in)
	if err != nil {
		s.fail(r.Context(), w, "create_contest", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateContest(w http.ResponseWriter, r *http.Request) {
	var in model.ContestInput
	if err := decodeJSON(r, &in); err != nil {
		s.fail(r.Context(), w, "update_contest", err)
		return
	}
	c, err := s.deps.UpdateContest(r.Context(), credentials(r), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(r.Context(), w, "update_contest", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteContest(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DeleteContest(r.Context(), credentials(r), chi.URLParam(r, "id")); err != nil {
		s.fail(r.Context(), w, "delete_contest", err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: true})
}
