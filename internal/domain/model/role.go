package model

import (
	"strings"
)

// Role is the caller's portal role as reported by the session endpoint.
type Role int

const (
	// RoleUnknown means the session has not been resolved yet.
	RoleUnknown Role = iota
	// RoleNone means there is no session.
	RoleNone
	RoleUser
	RoleCoach
	RoleAdmin
)

// ParseRole maps a wire role name to a Role. ok is false for names it does not know.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, true
	case "coach":
		return RoleCoach, true
	case "admin":
		return RoleAdmin, true
	default:
		return RoleUser, false
	}
}

func (r Role) String() string {
	switch r {
	case RoleUnknown:
		return "unknown"
	case RoleNone:
		return "none"
	case RoleUser:
		return "user"
	case RoleCoach:
		return "coach"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// CanMutate reports whether mutation controls are shown for r. This is a
// display gate; the API enforces authorization.
func (r Role) CanMutate() bool {
	switch r {
	case RoleCoach, RoleAdmin:
		return true
	case RoleUnknown, RoleNone, RoleUser:
		return false
	default:
		return false
	}
}
