// Package restapi is the HTTP PersistenceAPI and DraftStore used by the
// "http" backend. It talks to a `showcase serve` instance.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mesh-intelligence/showcase/internal/server"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

const defaultTimeout = 30 * time.Second

// ErrUnavailable reports a transport failure or an unexpected response.
var ErrUnavailable = errors.New("content api unavailable")

// Client calls the showcase HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

var (
	_ types.PersistenceAPI = (*Client)(nil)
	_ types.DraftStore     = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid api url %q", types.ErrInvalidData, baseURL)
	}
	c := &Client{
		baseURL: u.String(),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListSlots returns every slot of a section.
func (c *Client) ListSlots(ctx context.Context, sectionID string) ([]types.Slot, error) {
	var body struct {
		Data []types.Slot `json:"data"`
	}
	path := "/api/sections/" + url.PathEscape(sectionID) + "/slots"
	if err := c.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		body.Data = []types.Slot{}
	}
	return body.Data, nil
}

// UpsertSlot creates or replaces a slot on the server.
func (c *Client) UpsertSlot(ctx context.Context, slot types.Slot) (types.Slot, error) {
	if err := slot.Validate(); err != nil {
		return types.Slot{}, err
	}
	var stored types.Slot
	if err := c.do(ctx, http.MethodPost, "/api/slots", slot, &stored); err != nil {
		return types.Slot{}, err
	}
	return stored, nil
}

// DeleteSlot removes a slot by ID.
func (c *Client) DeleteSlot(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return c.do(ctx, http.MethodDelete, "/api/slots/"+url.PathEscape(id), nil, nil)
}

// Get reads a draft. A 404 means the key does not exist.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	var body server.DraftBody
	err := c.do(ctx, http.MethodGet, "/api/drafts/"+escapePath(key), nil, &body)
	if errors.Is(err, types.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return body.Value, true, nil
}

// Set writes a draft.
func (c *Client) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return types.ErrInvalidID
	}
	return c.do(ctx, http.MethodPut, "/api/drafts/"+escapePath(key), server.DraftBody{Value: value}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encoding request: %v", types.ErrInvalidData, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s %s: %v", ErrUnavailable, method, path, err)
	}
	return nil
}

// decodeError maps an error envelope back to a sentinel error.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	var body server.ErrorBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Reason == "" {
		return fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var sentinel error
	switch body.Reason {
	case server.ReasonNotFound:
		sentinel = types.ErrNotFound
	case server.ReasonInvalidID:
		sentinel = types.ErrInvalidID
	case server.ReasonInvalidData:
		sentinel = types.ErrInvalidData
	case server.ReasonDetached:
		sentinel = types.ErrDetached
	default:
		sentinel = ErrUnavailable
	}
	return fmt.Errorf("%w: %s", sentinel, body.Message)
}

func escapePath(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
