// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"
	"strings"
)

const MaxDisplayNameLen = 100

var (
	ErrEmailEmpty      = errors.New("email empty")
	ErrEmailInvalid    = errors.New("email invalid")
	ErrDisplayNameLong = errors.New("display name too long")
)

// User is the authenticated account as this layer sees it. The email
// doubles as the session identity and as the directory's host key.
type User struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(email, displayName string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailEmpty
	}
	if !strings.Contains(email, "@") {
		return nil, ErrEmailInvalid
	}
	if len(displayName) > MaxDisplayNameLen {
		return nil, ErrDisplayNameLong
	}
	if displayName == "" {
		displayName = email
	}
	return &User{Email: email, DisplayName: displayName}, nil
}
