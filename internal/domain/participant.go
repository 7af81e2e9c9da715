package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Role is a participant's backend-assigned room role.
type Role string

const (
	RoleHost      Role = "host"
	RoleModerator Role = "moderator"
	RoleGuest     Role = "guest"
	RoleViewer    Role = "viewer"
)

// ParseRole maps a raw string onto a known role. Unknown or empty
// input reports ok=false so callers can fall back to directory lookup.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleHost:
		return RoleHost, true
	case RoleModerator:
		return RoleModerator, true
	case RoleGuest:
		return RoleGuest, true
	case RoleViewer:
		return RoleViewer, true
	}
	return "", false
}

// CanBroadcast reports whether the role may publish audio/video.
func (r Role) CanBroadcast() bool {
	return r == RoleHost || r == RoleModerator || r == RoleGuest
}

// CanModerate reports whether the role may change other participants' roles.
func (r Role) CanModerate() bool {
	return r == RoleHost || r == RoleModerator
}

// FlexID tolerates the backend emitting identifiers either as JSON
// numbers or strings.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

// FlexIDFromInt is a convenience for tests and fixtures.
func FlexIDFromInt(n int) FlexID { return FlexID(strconv.Itoa(n)) }

// Participant is the backend-authoritative membership record. The
// transient media-session counterpart lives in core.ParticipantSnapshot;
// the two are correlated by identity or display name at runtime.
type Participant struct {
	ID            FlexID `json:"id"`
	UserID        FlexID `json:"userId"`
	Username      string `json:"username"`
	Role          Role   `json:"role"`
	JoinedAt      string `json:"joinedAt,omitempty"`
	LastActive    string `json:"lastActive,omitempty"`
	IsCurrentUser bool   `json:"isCurrentUser,omitempty"`
}
