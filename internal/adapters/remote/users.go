package remote

import (
	"context"
	"net/http"
)

// ListUsers fetches the registered members.
func (c *Client) ListUsers(ctx context.Context, creds Credentials) ([]User, error) {
	var out listEnvelope[userRow]
	if _, err := c.do(ctx, request{op: "users.list", method: http.MethodGet, path: "/users", creds: creds}, &out); err != nil {
		return nil, err
	}
	users := make([]User, len(out.Items))
	for i, row := range out.Items {
		u := row.toUser()
		u.ProfileImageURL = c.Absolute(u.ProfileImageURL)
		users[i] = u
	}
	return users, nil
}
