// Package codeforces reads public ratings from the Codeforces API.
package codeforces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/algoritmia-up/portal/pkg/logger"
	"github.com/algoritmia-up/portal/pkg/metrics"
)

var (
	// ErrAPI is returned when Codeforces answers with a non-OK status.
	ErrAPI = errors.New("codeforces api error")
	// ErrUnavailable is returned when no usable answer arrived.
	ErrUnavailable = errors.New("codeforces unavailable")
)

// maxHandlesPerCall keeps the query string within what the API accepts.
const maxHandlesPerCall = 300

// User is the rating record of one handle.
type User struct {
	Handle    string `json:"handle"`
	Rating    int    `json:"rating"`
	MaxRating int    `json:"maxRating"`
}

type userInfoResponse struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  []User `json:"result"`
}

// Client calls https://codeforces.com/api.
type Client struct {
	base       string
	httpClient *http.Client
	log        logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Client rooted at base, e.g. "https://codeforces.com".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:       strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserInfo returns the records of handles, batched per call. Codeforces
// answers FAILED if any handle in a batch is unknown, which surfaces as
// ErrAPI for the whole lookup.
func (c *Client) UserInfo(ctx context.Context, handles []string) ([]User, error) {
	if len(handles) == 0 {
		return nil, nil
	}
	var users []User
	for start := 0; start < len(handles); start += maxHandlesPerCall {
		end := min(start+maxHandlesPerCall, len(handles))
		batch, err := c.userInfo(ctx, handles[start:end])
		if err != nil {
			return nil, err
		}
		users = append(users, batch...)
	}
	return users, nil
}

func (c *Client) userInfo(ctx context.Context, handles []string) ([]User, error) {
	start := time.Now()
	users, err := c.fetch(ctx, handles)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		c.log.Warn(ctx, "codeforces user.info failed", logger.Int("handles", len(handles)), logger.Error(err))
	}
	metrics.RecordRemoteCall("codeforces.user_info", outcome, time.Since(start))
	return users, err
}

func (c *Client) fetch(ctx context.Context, handles []string) ([]User, error) {
	q := url.Values{}
	q.Set("handles", strings.Join(handles, ";"))
	q.Set("checkHistoricHandles", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/user.info?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("codeforces: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}

	var out userInfoResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: HTTP %d", ErrAPI, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: decode: %w", ErrUnavailable, err)
	}
	if out.Status != "OK" {
		comment := strings.TrimSpace(out.Comment)
		if comment == "" {
			comment = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", ErrAPI, comment)
	}
	return out.Result, nil
}
