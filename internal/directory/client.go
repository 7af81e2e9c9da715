// Package directory is the REST client for the backend participant
// directory and papers API. It does request/response mapping only; all
// reconciliation logic lives in internal/sync.
package directory

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

	"github.com/rs/zerolog/log"

	"github.com/scholarcast/scholarcast/internal/core"
)

const alreadyHostingMarker = "already have an active room"

// APIError is a non-2xx backend answer. Message carries the backend's
// error body so callers can branch on recognized special cases.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
}

// IsAlreadyHosting recognizes the create-room rejection for users who
// already own an active room. Callers recover by re-listing rooms.
func IsAlreadyHosting(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusBadRequest &&
		strings.Contains(apiErr.Message, alreadyHostingMarker)
}

type Client struct {
	base   string
	email  string
	tokens core.TokenSource
	http   *http.Client
}

// NewClient builds a directory client. email is the current user's
// identity, used to recognize the caller's own records; tokens may be
// nil for unauthenticated read-only use.
func NewClient(baseURL, email string, tokens core.TokenSource) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		email:  email,
		tokens: tokens,
		http:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SetHTTPClient overrides the transport, mainly for tests.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

func (c *Client) Email() string { return c.email }

// do issues one JSON request. Authenticated calls that bounce with 401
// force a token refresh and retry exactly once.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) error {
	retried := false
	token := ""
	if authed {
		if c.tokens == nil {
			return core.ErrNotAuthenticated
		}
		t, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("identity token: %w", err)
		}
		token = t
	}

	for {
		status, respBody, err := c.once(ctx, method, path, query, body, token)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized && authed && !retried {
			retried = true
			t, err := c.tokens.ForceRefresh(ctx)
			if err != nil {
				return fmt.Errorf("identity refresh: %w", err)
			}
			token = t
			log.Debug().Str("module", "directory").Str("path", path).Msg("401, retrying with fresh token")
			continue
		}
		if status >= 400 {
			return &APIError{Status: status, Message: errorMessage(respBody)}
		}
		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	}
}

func (c *Client) once(ctx context.Context, method, path string, query url.Values, body any, token string) (int, []byte, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s: %w", path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return resp.StatusCode, respBody, nil
}

// errorMessage digs the backend's error string out of a failure body,
// falling back to the raw text for non-JSON answers.
func errorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		switch {
		case e.Error != "":
			return e.Error
		case e.Detail != "":
			return e.Detail
		case e.Message != "":
			return e.Message
		}
	}
	return strings.TrimSpace(string(body))
}
