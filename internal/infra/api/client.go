package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"flag_notification_agent/internal/domain/flag"

	"github.com/goccy/go-json"
)

// NetworkError means the backend could not be reached, or answered with a
// non-success HTTP status. Poll cycles treat it as retryable.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError means the backend was reachable but its response did not form
// a valid success envelope. Also retryable from the poll cycle's point of view.
type ProtocolError struct {
	Op      string
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Client talks to the course-assistant backend on behalf of one student
// session. All endpoints share the `{success, data, message}` envelope.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient constructs a client for the configured backend.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// FetchCurrentFlags retrieves the caller's complete current flag set.
func (c *Client) FetchCurrentFlags(ctx context.Context) ([]flag.Record, error) {
	const op = "fetch flags"

	data, err := c.get(ctx, "/api/flags/my", op)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Flags []flag.Record `json:"flags"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &ProtocolError{Op: op, Message: "malformed flags payload", Err: err}
	}
	return payload.Flags, nil
}

// SessionReady reports whether the session subsystem has resolved a caller
// identity yet. Any failure counts as "not ready"; the lifecycle manager polls
// this with a bounded attempt budget.
func (c *Client) SessionReady(ctx context.Context) bool {
	_, err := c.get(ctx, "/api/auth/me", "check session")
	return err == nil
}

func (c *Client) get(ctx context.Context, path, op string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		io.Copy(io.Discard, resp.Body)
		return nil, &NetworkError{Op: op, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ProtocolError{Op: op, Message: "malformed response envelope", Err: err}
	}
	if !env.Success {
		return nil, &ProtocolError{Op: op, Message: env.Message}
	}
	return env.Data, nil
}
