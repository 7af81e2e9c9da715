package domain

import (
	"encoding/json"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"host", RoleHost, true},
		{"  Moderator ", RoleModerator, true},
		{"GUEST", RoleGuest, true},
		{"viewer", RoleViewer, true},
		{"", "", false},
		{"admin", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRoleCapabilities(t *testing.T) {
	if !RoleHost.CanBroadcast() || !RoleModerator.CanBroadcast() || !RoleGuest.CanBroadcast() {
		t.Error("host, moderator and guest may broadcast")
	}
	if RoleViewer.CanBroadcast() {
		t.Error("viewer must not broadcast")
	}
	if !RoleHost.CanModerate() || !RoleModerator.CanModerate() {
		t.Error("host and moderator may moderate")
	}
	if RoleGuest.CanModerate() || RoleViewer.CanModerate() {
		t.Error("guest and viewer must not moderate")
	}
}

func TestFlexIDAcceptsNumbersAndStrings(t *testing.T) {
	var p Participant
	if err := json.Unmarshal([]byte(`{"id": 42, "userId": "7", "username": "ada@example.org", "role": "guest"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ID != "42" {
		t.Errorf("expected numeric id normalized to \"42\", got %q", p.ID)
	}
	if p.UserID != "7" {
		t.Errorf("expected string id kept as \"7\", got %q", p.UserID)
	}
}

func TestNewUserValidation(t *testing.T) {
	if _, err := NewUser("", "Ada"); err != ErrEmailEmpty {
		t.Errorf("empty email: expected ErrEmailEmpty, got %v", err)
	}
	if _, err := NewUser("not-an-email", "Ada"); err != ErrEmailInvalid {
		t.Errorf("invalid email: expected ErrEmailInvalid, got %v", err)
	}
	u, err := NewUser("ada@example.org", "")
	if err != nil {
		t.Fatalf("valid user: %v", err)
	}
	if u.DisplayName != "ada@example.org" {
		t.Errorf("display name should default to email, got %q", u.DisplayName)
	}
}
