package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/algoritmia-up/portal/internal/domain/listing"
	"github.com/algoritmia-up/portal/internal/domain/model"
)

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, listing.Resources)
	if err != nil {
		s.fail(r.Context(), w, "list_resources", err)
		return
	}
	if q.refresh {
		if err := s.deps.Reload(r.Context(), credentials(r)); err != nil {
			s.fail(r.Context(), w, "list_resources", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, items(s.deps.Resources(q.search, q.sort)))
}

func (s *Server) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	var in model.ResourceInput
	if err := decodeJSON(r, &in); err != nil {
		s.fail(r.Context(), w, "create_resource", err)
		return
	}
	// The author defaults to the signed-in member.
	if strings.TrimSpace(in.AddedBy) == "" {
		in.AddedBy = s.currentUserID(r)
	}
	res, err := s.deps.CreateResource(r.Context(), credentials(r), in)
	if err != nil {
		s.fail(r.Context(), w, "create_resource", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleUpdateResource(w http.ResponseWriter, r *http.Request) {
	var in model.ResourceInput
	if err := decodeJSON(r, &in); err != nil {
		s.fail(r.Context(), w, "update_resource", err)
		return
	}
	res, err := s.deps.UpdateResource(r.Context(), credentials(r), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(r.Context(), w, "update_resource", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DeleteResource(r.Context(), credentials(r), chi.URLParam(r, "id")); err != nil {
		s.fail(r.Context(), w, "delete_resource", err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: true})
}
