package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call to the persistence API.
type Kind int

const (
	KindValidationRejected Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNetworkFailure
	KindServerError
	KindMalformedResponse
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrValidationRejected = errors.New("validation rejected")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNetworkFailure     = errors.New("network failure")
	ErrServerError        = errors.New("server error")
	ErrMalformedResponse  = errors.New("malformed response")
)

func (k Kind) String() string {
	switch k {
	case KindValidationRejected:
		return "validation_rejected"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNetworkFailure:
		return "network_failure"
	case KindServerError:
		return "server_error"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidationRejected:
		return ErrValidationRejected
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNetworkFailure:
		return ErrNetworkFailure
	case KindServerError:
		return ErrServerError
	case KindMalformedResponse:
		return ErrMalformedResponse
	default:
		return nil
	}
}

// Error is a failed API call.
type Error struct {
	Kind   Kind
	Op     string
	Status int    // HTTP status, 0 when no response arrived
	Detail string // server-provided message, if any
	err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "remote %s: %s", e.Op, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	if e.err != nil {
		fmt.Fprintf(&b, ": %v", e.err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.err }

// Is matches the sentinel for e's kind. A forbidden call is also an
// unauthorized one.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if e.Kind == KindForbidden && target == ErrUnauthorized {
		return true
	}
	return target == e.Kind.sentinel()
}

// UserMessage is the text shown to the person who triggered the call.
// Validation rejections carry the server's detail verbatim.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindValidationRejected:
		if e.Detail != "" {
			return e.Detail
		}
		return "The request was rejected."
	case KindUnauthorized:
		return "You must sign in to do this."
	case KindForbidden:
		return "Only coaches and admins can do this."
	case KindNetworkFailure:
		return "Could not reach the server. Check your connection and try again."
	case KindServerError, KindMalformedResponse:
		return "Something went wrong on the server. Please try again later."
	default:
		return "Unexpected error."
	}
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// kindForStatus maps a non-2xx status to a Kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status >= 400 && status < 500:
		return KindValidationRejected
	default:
		return KindServerError
	}
}

// errorBody is the error shape the API returns. detail is a string for
// application errors and a list of field errors for request validation.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type fieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// decodeError turns a non-2xx response into an *Error. It reads detail, then
// message, then falls back to "HTTP <status>".
func decodeError(op string, status int, body []byte) *Error {
	return &Error{
		Kind:   kindForStatus(status),
		Op:     op,
		Status: status,
		Detail: errorDetail(status, body),
	}
}

func errorDetail(status int, body []byte) string {
	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		if d := detailText(eb.Detail); d != "" {
			return d
		}
		if m := strings.TrimSpace(eb.Message); m != "" {
			return m
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var fields []fieldError
	if json.Unmarshal(raw, &fields) == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			if f.Msg == "" {
				continue
			}
			if name := lastLoc(f.Loc); name != "" {
				msgs = append(msgs, name+": "+f.Msg)
			} else {
				msgs = append(msgs, f.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func lastLoc(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	if s, ok := loc[len(loc)-1].(string); ok && s != "body" {
		return s
	}
	return ""
}
