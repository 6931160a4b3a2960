package remote

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	rememberTTL = 30 * 24 * time.Hour
	defaultTTL  = 24 * time.Hour
)

// Identity is the signed-in user as reported by the API. Role is nil when
// the API does not send one.
type Identity struct {
	UserID string
	Role   *string
}

type meResponse struct {
	User *struct {
		ID   flexString `json:"id"`
		Role *string    `json:"role"`
	} `json:"user"`
}

// Me returns the identity behind creds. A rejected session is
// ErrUnauthorized.
func (c *Client) Me(ctx context.Context, creds Credentials) (Identity, error) {
	var out meResponse
	if _, err := c.do(ctx, request{op: "auth.me", method: http.MethodGet, path: "/auth/me", creds: creds}, &out); err != nil {
		return Identity{}, err
	}
	if out.User == nil {
		return Identity{}, &Error{Kind: KindMalformedResponse, Op: "auth.me", Status: http.StatusOK, Detail: "missing user"}
	}
	id := Identity{UserID: string(out.User.ID)}
	if out.User.Role != nil {
		role := strings.TrimSpace(*out.User.Role)
		id.Role = &role
	}
	return id, nil
}

type loginPayload struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	CreateSession bool   `json:"create_session"`
	TTLMinutes    int    `json:"ttl_minutes"`
}

type loginResponse struct {
	User struct {
		ID flexString `json:"id"`
	} `json:"user"`
}

// Session is the outcome of a successful login.
type Session struct {
	UserID      string
	Credentials Credentials
}

// Login opens a session. remember extends it to thirty days.
func (c *Client) Login(ctx context.Context, email, password string, remember bool) (Session, error) {
	ttl := defaultTTL
	if remember {
		ttl = rememberTTL
	}
	r, err := jsonRequest("auth.login", http.MethodPost, "/auth/login", Credentials{}, loginPayload{
		Email:         strings.TrimSpace(email),
		Password:      password,
		CreateSession: true,
		TTLMinutes:    int(ttl / time.Minute),
	})
	if err != nil {
		return Session{}, err
	}
	var out loginResponse
	header, err := c.do(ctx, r, &out)
	if err != nil {
		return Session{}, err
	}
	resp := http.Response{Header: header}
	return Session{
		UserID:      string(out.User.ID),
		Credentials: WithCookies(resp.Cookies()...),
	}, nil
}

// Logout closes the session behind creds.
func (c *Client) Logout(ctx context.Context, creds Credentials) error {
	_, err := c.do(ctx, request{op: "auth.logout", method: http.MethodPost, path: "/auth/logout", creds: creds}, nil)
	return err
}
