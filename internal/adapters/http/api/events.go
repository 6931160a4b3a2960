package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/algoritmia-up/portal/internal/domain/listing"
)

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, listing.Events)
	if err != nil {
		s.fail(r.Context(), w, "list_events", err)
		return
	}
	if q.refresh {
		if err := s.deps.Reload(r.Context(), credentials(r)); err != nil {
			s.fail(r.Context(), w, "list_events", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, items(s.deps.Events(q.search, q.sort)))
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	in, err := decodeEvent(w, r)
	if err != nil {
		s.fail(r.Context(), w, "create_event", err)
		return
	}
	ev, err := s.deps.CreateEvent(r.Context(), credentials(r), in)
	if err != nil {
		s.fail(r.Context(), w, "create_event", err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	in, err := decodeEvent(w, r)
	if err != nil {
		s.fail(r.Context(), w, "update_event", err)
		return
	}
	ev, err := s.deps.UpdateEvent(r.Context(), credentials(r), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(r.Context(), w, "update_event", err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DeleteEvent(r.Context(), credentials(r), chi.URLParam(r, "id")); err != nil {
		s.fail(r.Context(), w, "delete_event", err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: true})
}
