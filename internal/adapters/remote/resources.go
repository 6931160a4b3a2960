package remote

import (
	"context"
	"net/http"

	"github.com/algoritmia-up/portal/internal/domain/model"
)

// ListResources fetches every resource.
func (c *Client) ListResources(ctx context.Context, creds Credentials) ([]model.Resource, error) {
	var out listEnvelope[resourceRow]
	if _, err := c.do(ctx, request{op: "resources.list", method: http.MethodGet, path: "/resources", creds: creds}, &out); err != nil {
		return nil, err
	}
	items := make([]model.Resource, len(out.Items))
	for i, row := range out.Items {
		items[i] = row.toResource()
	}
	return items, nil
}

// CreateResource stores a new resource.
func (c *Client) CreateResource(ctx context.Context, creds Credentials, in model.ResourceInput) (model.Resource, error) {
	return c.saveResource(ctx, "resources.create", http.MethodPost, "/resources", creds, in)
}

// UpdateResource replaces the fields of resource id.
func (c *Client) UpdateResource(ctx context.Context, creds Credentials, id string, in model.ResourceInput) (model.Resource, error) {
	return c.saveResource(ctx, "resources.update", http.MethodPatch, entityPath("resources", id), creds, in)
}

func (c *Client) saveResource(ctx context.Context, op, method, path string, creds Credentials, in model.ResourceInput) (model.Resource, error) {
	r, err := jsonRequest(op, method, path, creds, newResourcePayload(in))
	if err != nil {
		return model.Resource{}, err
	}
	var row resourceRow
	if _, err := c.do(ctx, r, &row); err != nil {
		return model.Resource{}, err
	}
	if row.ID == "" {
		return model.Resource{}, &Error{Kind: KindMalformedResponse, Op: op, Status: http.StatusOK, Detail: "missing id"}
	}
	res := row.toResource()
	if res.AddedBy == "" {
		res.AddedBy = in.AddedBy
	}
	return res, nil
}

// DeleteResource removes resource id.
func (c *Client) DeleteResource(ctx context.Context, creds Credentials, id string) error {
	return c.deleteEntity(ctx, "resources.delete", entityPath("resources", id), creds)
}
