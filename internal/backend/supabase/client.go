// Package supabase implements backend.Client against a hosted Supabase-style
// deployment: GoTrue for auth, PostgREST for rows, and the realtime websocket
// for change notifications. Wire shapes match the hosted service exactly so a
// drop-in replacement keeps working.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"taskverse/internal/backend"
)

// defaultTimeout is the HTTP client's own default; no per-request timeout is
// configured on top of it.
const defaultTimeout = 30 * time.Second

// Client talks to one Supabase project.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	log     *slog.Logger
}

// New constructs a client from the endpoint URL and public API key. Empty
// values are accepted: construction never fails, the first network call does.
func New(baseURL, anonKey string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

// newRequest builds a request with the project headers. bearer falls back to
// the anon key when no session token applies.
func (c *Client) newRequest(ctx context.Context, method, url, bearer string, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends the request and decodes a 2xx JSON body into out (out may be nil).
// Every non-success response collapses into one backend.Error carrying the
// service's message.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return backend.NewError(err.Error())
	}
	defer resp.Body.Close()
	return decodeBody(resp, out)
}

// decodeBody consumes an already-received response.
func decodeBody(resp *http.Response, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return backend.NewError(err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return backend.NewError(fmt.Sprintf("malformed response: %v", err))
		}
	}
	return nil
}

// decodeError extracts the human-readable message from the error body. The
// auth and row services use different field names.
func decodeError(status int, raw []byte) error {
	var body struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Err              string `json:"error"`
	}
	_ = json.Unmarshal(raw, &body)
	for _, m := range []string{body.ErrorDescription, body.Msg, body.Message, body.Err} {
		if m != "" {
			return backend.NewError(m)
		}
	}
	return backend.NewError(http.StatusText(status))
}
