package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/algoritmia-up/portal/internal/adapters/codeforces"
	"github.com/algoritmia-up/portal/internal/adapters/remote"
	"github.com/algoritmia-up/portal/internal/domain/inflight"
	"github.com/algoritmia-up/portal/internal/domain/listing"
	"github.com/algoritmia-up/portal/internal/domain/validate"
	"github.com/algoritmia-up/portal/pkg/logger"
)

// ErrBadRequest marks a request the server could not decode.
var ErrBadRequest = errors.New("bad request")

// failure is how an error is shown to the caller.
type failure struct {
	status  int
	code    string
	message string
}

// classify maps an error from any layer to its HTTP form.
func classify(err error) failure {
	var ve *validate.Error
	if errors.As(err, &ve) {
		return failure{http.StatusBadRequest, "validation", ve.Message}
	}
	if errors.Is(err, inflight.ErrInFlight) {
		return failure{http.StatusConflict, "in_flight", "This operation is already in progress."}
	}
	if errors.Is(err, listing.ErrUnknownSortKey) || errors.Is(err, listing.ErrInvalidDirection) {
		return failure{http.StatusBadRequest, "bad_request", err.Error()}
	}
	if errors.Is(err, ErrBadRequest) {
		return failure{http.StatusBadRequest, "bad_request", err.Error()}
	}
	if e, ok := remote.AsError(err); ok {
		switch e.Kind {
		case remote.KindValidationRejected:
			if e.Status == http.StatusNotFound {
				return failure{http.StatusNotFound, "not_found", e.UserMessage()}
			}
			return failure{http.StatusBadRequest, "rejected", e.UserMessage()}
		case remote.KindUnauthorized:
			return failure{http.StatusUnauthorized, "unauthorized", e.UserMessage()}
		case remote.KindForbidden:
			return failure{http.StatusForbidden, "forbidden", e.UserMessage()}
		case remote.KindNetworkFailure, remote.KindServerError, remote.KindMalformedResponse:
			return failure{http.StatusBadGateway, e.Kind.String(), e.UserMessage()}
		}
	}
	if errors.Is(err, codeforces.ErrAPI) || errors.Is(err, codeforces.ErrUnavailable) {
		return failure{http.StatusBadGateway, "ratings_unavailable", "Could not sync with Codeforces."}
	}
	return failure{http.StatusInternalServerError, "internal_error", "Unexpected error."}
}

func (s *Server) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	f := classify(err)
	if f.status >= http.StatusInternalServerError {
		s.log.Error(ctx, "request failed", logger.String("op", op), logger.Int("status", f.status), logger.Error(err))
	} else {
		s.log.Debug(ctx, "request rejected", logger.String("op", op), logger.Int("status", f.status), logger.Error(err))
	}
	writeError(w, f.status, f.code, f.message)
}
