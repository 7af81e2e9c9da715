package core

import (
	"context"
	"errors"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// TokenSource supplies identity tokens for backend calls. Token returns
// a cached token, refreshing when it is near expiry; ForceRefresh always
// fetches a new one (the 401 recovery path).
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	ForceRefresh(ctx context.Context) (string, error)
}
