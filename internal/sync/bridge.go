package sync

import (
	"encoding/json"
	"strings"
	gosync "sync"

	"github.com/scholarcast/scholarcast/internal/core"
	"github.com/scholarcast/scholarcast/internal/domain"
)

// roleMetadata is the JSON blob attached to a media-session
// participant. Anything else in the blob is ignored.
type roleMetadata struct {
	Role string `json:"role"`
}

// EncodeRoleMetadata serializes the role claim for participant metadata.
func EncodeRoleMetadata(role domain.Role) string {
	b, _ := json.Marshal(roleMetadata{Role: string(role)})
	return string(b)
}

// DecodeRoleMetadata reads a role claim out of a metadata string.
// Malformed or absent payloads report ok=false, never an error: a bad
// blob means "no role asserted".
func DecodeRoleMetadata(metadata string) (domain.Role, bool) {
	if metadata == "" {
		return "", false
	}
	var m roleMetadata
	if err := json.Unmarshal([]byte(metadata), &m); err != nil {
		return "", false
	}
	return domain.ParseRole(m.Role)
}

// ResolveRole infers a remote participant's role: declared metadata
// first, then the room's host identity, then a directory match by
// display name, defaulting to viewer.
func ResolveRole(snap core.ParticipantSnapshot, hostID string, directory []domain.Participant) domain.Role {
	if role, ok := DecodeRoleMetadata(snap.Metadata); ok {
		return role
	}
	if hostID != "" && snap.Identity == hostID {
		return domain.RoleHost
	}
	if p := MatchDirectoryParticipant(directory, snap); p != nil {
		return p.Role
	}
	return domain.RoleViewer
}

// MatchDirectoryParticipant correlates a media-session participant with
// its backend record. There is no shared primary key, so matching walks
// a ladder: exact username, case-insensitive username, user id against
// the session identity, and finally a substring match. Nil when nothing
// matches.
func MatchDirectoryParticipant(directory []domain.Participant, snap core.ParticipantSnapshot) *domain.Participant {
	name := snap.DisplayName()

	for i := range directory {
		if directory[i].Username == name {
			return &directory[i]
		}
	}
	for i := range directory {
		if strings.EqualFold(directory[i].Username, name) {
			return &directory[i]
		}
	}
	for i := range directory {
		if directory[i].UserID.String() == snap.Identity {
			return &directory[i]
		}
	}
	var substring []*domain.Participant
	for i := range directory {
		if strings.Contains(directory[i].Username, name) || strings.Contains(name, directory[i].Username) {
			substring = append(substring, &directory[i])
		}
	}
	if len(substring) > 0 {
		return substring[0]
	}
	return nil
}

// MetadataEvent is re-emitted to every subscriber when any session
// participant's metadata changes.
type MetadataEvent struct {
	Identity     string
	PrevMetadata string
}

// MetadataHub fans one session-level metadata subscription out to any
// number of consumers, so independent components never race to register
// against the session itself.
type MetadataHub struct {
	mu         gosync.Mutex
	subs       []func(MetadataEvent)
	registered bool
}

func NewMetadataHub() *MetadataHub {
	return &MetadataHub{}
}

// Attach registers the hub on the session's metadata-change event.
// Guarded by a flag so repeated setup attempts never stack handlers.
func (h *MetadataHub) Attach(session core.MediaSession) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.registered {
		return
	}
	h.registered = true
	session.OnMetadataChanged(func(identity, prev string) {
		h.emit(MetadataEvent{Identity: identity, PrevMetadata: prev})
	})
}

func (h *MetadataHub) Subscribe(fn func(MetadataEvent)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = append(h.subs, fn)
}

func (h *MetadataHub) emit(ev MetadataEvent) {
	h.mu.Lock()
	subs := append([](func(MetadataEvent))(nil), h.subs...)
	h.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}
