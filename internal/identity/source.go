// Package identity supplies backend identity tokens. The platform's
// auth provider issues short-lived JWTs exchanged from a long-lived
// refresh token; expiry is read from the token itself so refreshes
// happen before the backend starts answering 401.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/scholarcast/scholarcast/internal/core"
)

const defaultExchangeURL = "https://securetoken.googleapis.com/v1/token"

// expiryLeeway forces a refresh slightly before the hard expiry so an
// in-flight request never carries a token that dies mid-request.
const expiryLeeway = 30 * time.Second

// Source implements core.TokenSource over the provider's token
// exchange endpoint.
type Source struct {
	apiKey       string
	refreshToken string
	exchangeURL  string
	http         *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time

	now func() time.Time
}

func NewSource(apiKey, refreshToken string) *Source {
	return &Source{
		apiKey:       apiKey,
		refreshToken: refreshToken,
		exchangeURL:  defaultExchangeURL,
		http:         &http.Client{Timeout: 10 * time.Second},
		now:          time.Now,
	}
}

// SetExchangeURL overrides the token endpoint, mainly for tests.
func (s *Source) SetExchangeURL(u string) { s.exchangeURL = u }

func (s *Source) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.token != "" && s.now().Add(expiryLeeway).Before(s.expiry) {
		t := s.token
		s.mu.Unlock()
		return t, nil
	}
	s.mu.Unlock()
	return s.ForceRefresh(ctx)
}

func (s *Source) ForceRefresh(ctx context.Context) (string, error) {
	if s.refreshToken == "" {
		return "", core.ErrNotAuthenticated
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", s.refreshToken)

	u := s.exchangeURL + "?key=" + url.QueryEscape(s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange: status %d", resp.StatusCode)
	}

	var body struct {
		IDToken      string `json:"id_token"`
		ExpiresIn    string `json:"expires_in"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("token exchange decode: %w", err)
	}
	if body.IDToken == "" {
		return "", fmt.Errorf("token exchange: empty id_token")
	}

	expiry := s.tokenExpiry(body.IDToken, body.ExpiresIn)

	s.mu.Lock()
	s.token = body.IDToken
	s.expiry = expiry
	if body.RefreshToken != "" {
		s.refreshToken = body.RefreshToken
	}
	s.mu.Unlock()

	log.Debug().Str("module", "identity").Time("expiry", expiry).Msg("identity token refreshed")
	return body.IDToken, nil
}

// tokenExpiry reads exp from the JWT without verifying the signature
// (verification is the backend's job), falling back to expires_in.
func (s *Source) tokenExpiry(token, expiresIn string) time.Time {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	if secs, err := strconv.Atoi(expiresIn); err == nil && secs > 0 {
		return s.now().Add(time.Duration(secs) * time.Second)
	}
	return s.now().Add(time.Hour)
}

// StaticSource wraps a fixed token, for tooling and tests. ForceRefresh
// returns the same token; there is nothing to rotate.
type StaticSource string

func (s StaticSource) Token(context.Context) (string, error) {
	if s == "" {
		return "", core.ErrNotAuthenticated
	}
	return string(s), nil
}

func (s StaticSource) ForceRefresh(ctx context.Context) (string, error) { return s.Token(ctx) }
