package remote

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/algoritmia-up/portal/internal/domain/model"
)

// ListEvents fetches every event.
func (c *Client) ListEvents(ctx context.Context, creds Credentials) ([]model.Event, error) {
	var out listEnvelope[eventRow]
	if _, err := c.do(ctx, request{op: "events.list", method: http.MethodGet, path: "/events", creds: creds}, &out); err != nil {
		return nil, err
	}
	items := make([]model.Event, len(out.Items))
	for i, row := range out.Items {
		items[i] = row.toEvent(model.EventInput{})
	}
	return items, nil
}

type uploadResponse struct {
	URL string `json:"url"`
}

// UploadEventBanner stores an event image and returns its absolute URL.
func (c *Client) UploadEventBanner(ctx context.Context, creds Credentials, b model.Banner) (string, error) {
	const op = "events.upload_banner"
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, b.Filename))
	h.Set("Content-Type", b.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("remote %s: %w", op, err)
	}
	if _, err := part.Write(b.Data); err != nil {
		return "", fmt.Errorf("remote %s: %w", op, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("remote %s: %w", op, err)
	}

	var out uploadResponse
	r := request{op: op, method: http.MethodPost, path: "/events/upload-banner", creds: creds, body: &buf, contentType: w.FormDataContentType()}
	if _, err := c.do(ctx, r, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.URL) == "" {
		return "", &Error{Kind: KindMalformedResponse, Op: op, Status: http.StatusOK, Detail: "missing url"}
	}
	return c.Absolute(out.URL), nil
}

// Absolute resolves a path served by the API against its base.
func (c *Client) Absolute(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return c.base + u
}

// CreateEvent stores a new event. in.ImageURL must already point at an
// uploaded banner.
func (c *Client) CreateEvent(ctx context.Context, creds Credentials, in model.EventInput) (model.Event, error) {
	return c.saveEvent(ctx, "events.create", http.MethodPost, "/events", creds, in)
}

// UpdateEvent replaces the fields of event id.
func (c *Client) UpdateEvent(ctx context.Context, creds Credentials, id string, in model.EventInput) (model.Event, error) {
	return c.saveEvent(ctx, "events.update", http.MethodPatch, entityPath("events", id), creds, in)
}

func (c *Client) saveEvent(ctx context.Context, op, method, path string, creds Credentials, in model.EventInput) (model.Event, error) {
	r, err := jsonRequest(op, method, path, creds, newEventPayload(in))
	if err != nil {
		return model.Event{}, err
	}
	var row eventRow
	if _, err := c.do(ctx, r, &row); err != nil {
		return model.Event{}, err
	}
	if row.ID == "" {
		return model.Event{}, &Error{Kind: KindMalformedResponse, Op: op, Status: http.StatusOK, Detail: "missing id"}
	}
	e := row.toEvent(in)
	if e.ImageURL == "" {
		e.ImageURL = in.ImageURL
	}
	e.ImageURL = c.Absolute(e.ImageURL)
	return e, nil
}

// DeleteEvent removes event id.
func (c *Client) DeleteEvent(ctx context.Context, creds Credentials, id string) error {
	return c.deleteEntity(ctx, "events.delete", entityPath("events", id), creds)
}
