package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/algoritmia-up/portal/internal/domain/model"
)

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

func entityPath(collection, id string) string {
	return "/" + collection + "/" + url.PathEscape(id)
}

// ListContests fetches every contest.
func (c *Client) ListContests(ctx context.Context, creds Credentials) ([]model.Contest, error) {
	var out listEnvelope[contestRow]
	if _, err := c.do(ctx, request{op: "contests.list", method: http.MethodGet, path: "/contests", creds: creds}, &out); err != nil {
		return nil, err
	}
	items := make([]model.Contest, len(out.Items))
	for i, row := range out.Items {
		items[i] = row.toContest()
	}
	return items, nil
}

// CreateContest stores a new contest and returns it as the API saved it.
func (c *Client) CreateContest(ctx context.Context, creds Credentials, in model.ContestInput) (model.Contest, error) {
	return c.saveContest(ctx, "contests.create", http.MethodPost, "/contests", creds, in)
}

// UpdateContest replaces the fields of contest id.
func (c *Client) UpdateContest(ctx context.Context, creds Credentials, id string, in model.ContestInput) (model.Contest, error) {
	return c.saveContest(ctx, "contests.update", http.MethodPatch, entityPath("contests", id), creds, in)
}

func (c *Client) saveContest(ctx context.Context, op, method, path string, creds Credentials, in model.ContestInput) (model.Contest, error) {
	r, err := jsonRequest(op, method, path, creds, newContestPayload(in))
	if err != nil {
		return model.Contest{}, err
	}
	var row contestRow
	if _, err := c.do(ctx, r, &row); err != nil {
		return model.Contest{}, err
	}
	if row.ID == "" {
		return model.Contest{}, &Error{Kind: KindMalformedResponse, Op: op, Status: http.StatusOK, Detail: "missing id"}
	}
	return row.toContest(), nil
}

// DeleteContest removes contest id.
func (c *Client) DeleteContest(ctx context.Context, creds Credentials, id string) error {
	return c.deleteEntity(ctx, "contests.delete", entityPath("contests", id), creds)
}

func (c *Client) deleteEntity(ctx context.Context, op, path string, creds Credentials) error {
	var out deleteResponse
	_, err := c.do(ctx, request{op: op, method: http.MethodDelete, path: path, creds: creds}, &out)
	return err
}
