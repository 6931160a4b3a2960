// Package remote is the client of the portal's persistence and auth API.
//
// Every call carries the caller's session cookies. Failures are returned as
// *Error, classified by Kind.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/algoritmia-up/portal/pkg/logger"
	"github.com/algoritmia-up/portal/pkg/metrics"
)

const (
	maxBodyBytes    = 1 << 20
	requestIDHeader = "X-Request-ID"
)

// Client calls the persistence API rooted at a base URL.
type Client struct {
	base       string
	httpClient *http.Client
	timeout    time.Duration
	log        logger.Logger
}

// New creates a Client. base is the API root, e.g. "https://api.example.org".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:       strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// Base returns the API root without a trailing slash.
func (c *Client) Base() string { return c.base }

type request struct {
	op          string
	method      string
	path        string
	creds       Credentials
	body        io.Reader
	contentType string
}

func jsonRequest(op, method, path string, creds Credentials, payload any) (request, error) {
	r := request{op: op, method: method, path: path, creds: creds}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return r, fmt.Errorf("remote %s: encode payload: %w", op, err)
		}
		r.body = bytes.NewReader(b)
		r.contentType = "application/json"
	}
	return r, nil
}

// do sends r and decodes a 2xx body into out (when out is non-nil). It
// returns the response headers for callers that need cookies.
func (c *Client) do(ctx context.Context, r request, out any) (http.Header, error) {
	start := time.Now()
	header, err := c.send(ctx, r, out)
	outcome := "ok"
	if e, ok := AsError(err); ok {
		outcome = e.Kind.String()
	} else if err != nil {
		outcome = "error"
	}
	metrics.RecordRemoteCall(r.op, outcome, time.Since(start))
	if err != nil {
		c.log.Warn(ctx, "remote call failed",
			logger.String("op", r.op),
			logger.String("outcome", outcome),
			logger.Error(err))
	} else {
		c.log.Debug(ctx, "remote call",
			logger.String("op", r.op),
			logger.Duration("elapsed", time.Since(start)))
	}
	return header, err
}

func (c *Client) send(ctx context.Context, r request, out any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, c.base+r.path, r.body)
	if err != nil {
		return nil, fmt.Errorf("remote %s: build request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	id := logger.RequestID(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set(requestIDHeader, id)
	r.creds.apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetworkFailure, Op: r.op, err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindNetworkFailure, Op: r.op, Status: resp.StatusCode, err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, decodeError(r.op, resp.StatusCode, body)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.Header, &Error{Kind: KindMalformedResponse, Op: r.op, Status: resp.StatusCode, err: err}
		}
	}
	return resp.Header, nil
}
