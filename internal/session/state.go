// Package session resolves who is calling and whether they may mutate.
package session

import (
	"time"

	"github.com/algoritmia-up/portal/internal/domain/model"
)

// Status is the outcome of a session check.
type Status int

const (
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is the resolved session.
type State struct {
	Status    Status     `json:"status"`
	Role      model.Role `json:"role"`
	UserID    string     `json:"userId,omitempty"`
	CheckedAt time.Time  `json:"checkedAt"`
}

// CanMutate reports whether create, edit and delete controls apply.
func (s State) CanMutate() bool {
	return s.Status == StatusAuthenticated && s.Role.CanMutate()
}

func unauthenticated(at time.Time) State {
	return State{Status: StatusUnauthenticated, Role: model.RoleNone, CheckedAt: at}
}
