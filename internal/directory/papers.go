package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/scholarcast/scholarcast/internal/domain"
)

// ErrSearchCooldown is the papers backend's rate-limit answer; the UI
// waits a few seconds and lets the user try again.
var ErrSearchCooldown = errors.New("search cooldown active")

func (c *Client) SearchPapers(ctx context.Context, query string) ([]domain.Paper, error) {
	q := url.Values{}
	q.Set("query", query)
	var resp struct {
		OrganicResults []domain.Paper `json:"organic_results"`
	}
	err := c.do(ctx, http.MethodGet, "/api/papers/search", q, nil, &resp, true)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests {
			return nil, ErrSearchCooldown
		}
		return nil, err
	}
	return resp.OrganicResults, nil
}

func (c *Client) SaveExtract(ctx context.Context, extract domain.Extract) (*domain.Extract, error) {
	var resp struct {
		Extract *domain.Extract `json:"extract"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/papers/extracts/save/", nil, extract, &resp, true); err != nil {
		return nil, err
	}
	if resp.Extract == nil {
		return &extract, nil
	}
	return resp.Extract, nil
}

// UserExtracts lists the caller's saved extracts. The backend has
// shipped several response envelopes over time; all are tolerated.
func (c *Client) UserExtracts(ctx context.Context) ([]domain.Extract, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/papers/extracts/", nil, nil, &raw, true); err != nil {
		return nil, err
	}
	return decodeExtractEnvelope(raw)
}

func decodeExtractEnvelope(raw json.RawMessage) ([]domain.Extract, error) {
	var bare []domain.Extract
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}
	var wrapped struct {
		Extracts []domain.Extract `json:"extracts"`
		Results  []domain.Extract `json:"results"`
		Data     []domain.Extract `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, errors.New("unrecognized extracts response shape")
	}
	switch {
	case wrapped.Extracts != nil:
		return wrapped.Extracts, nil
	case wrapped.Results != nil:
		return wrapped.Results, nil
	case wrapped.Data != nil:
		return wrapped.Data, nil
	}
	return []domain.Extract{}, nil
}
