// Package sync keeps a participant's role and a room's shared
// references consistent across three copies with no shared transaction:
// the backend directory, the local state container, and the media
// session's participant metadata. A fixed-interval poll reconciles
// toward the backend; best-effort data-channel messages short-circuit
// the wait when someone changes state.
package sync

import (
	"encoding/json"
	"time"

	"github.com/scholarcast/scholarcast/internal/domain"
)

// Data-channel message types. Messages never carry authoritative
// payloads beyond the role itself; receivers re-pull from the backend.
const (
	MsgRoleUpdate            = "role_update"
	MsgRefreshParticipants   = "refresh_participants"
	MsgExtractShared         = "extract_shared"
	MsgRequestExtractRefresh = "request_extract_refresh"
)

// DataMessage is the one envelope for all data-channel traffic.
// Unused fields stay empty on the wire.
type DataMessage struct {
	Type                 string      `json:"type"`
	Role                 domain.Role `json:"role,omitempty"`
	ForceRefresh         bool        `json:"forceRefresh,omitempty"`
	ChangedParticipantID string      `json:"changedParticipantId,omitempty"`
	NewRole              domain.Role `json:"newRole,omitempty"`
	RoomID               string      `json:"roomId,omitempty"`
	Timestamp            int64       `json:"timestamp"`
}

func newMessage(msgType string) DataMessage {
	return DataMessage{Type: msgType, Timestamp: time.Now().UnixMilli()}
}

func (m DataMessage) encode() []byte {
	b, _ := json.Marshal(m)
	return b
}

// decodeMessage parses a data-channel payload. Malformed or untyped
// payloads report ok=false and are dropped by the caller.
func decodeMessage(payload []byte) (DataMessage, bool) {
	var m DataMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return DataMessage{}, false
	}
	if m.Type == "" {
		return DataMessage{}, false
	}
	return m, true
}
