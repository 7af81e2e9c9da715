package core

import (
	"context"

	"github.com/scholarcast/scholarcast/internal/domain"
)

// ParticipantList is the directory's answer for one room: the full
// authoritative membership plus the caller's own role when known.
type ParticipantList struct {
	Participants    []domain.Participant `json:"participants"`
	CurrentUserRole domain.Role          `json:"currentUserRole,omitempty"`
}

// RoomGrant is a media-session access token plus the capabilities the
// backend baked into it. Permissions are fixed for the token's lifetime;
// a role change requires a fresh grant and a reconnect.
type RoomGrant struct {
	Token      string        `json:"token"`
	RoomID     domain.RoomID `json:"room_id"`
	Role       domain.Role   `json:"role"`
	CanPublish bool          `json:"can_publish"`
}

// Directory is the backend-authoritative participant directory.
// It owns all durable room/participant/extract state; this layer only
// caches and reconciles against it.
type Directory interface {
	ListRooms(ctx context.Context) ([]domain.Room, error)
	CreateRoom(ctx context.Context, title string, interests []string) (*domain.Room, error)
	DeleteRoom(ctx context.Context, roomID domain.RoomID) error

	Participants(ctx context.Context, roomID domain.RoomID) (*ParticipantList, error)
	UpdateRole(ctx context.Context, roomID domain.RoomID, participantID string, role domain.Role) error

	ResearchInterests(ctx context.Context) ([]string, error)

	ShareExtract(ctx context.Context, roomID domain.RoomID, extract domain.SharedExtract) (*domain.SharedExtract, error)
	SharedExtracts(ctx context.Context, roomID domain.RoomID) ([]domain.SharedExtract, error)

	RoomToken(ctx context.Context, roomID domain.RoomID, username string, role domain.Role) (*RoomGrant, error)
}
