package sync

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/scholarcast/scholarcast/internal/core"
	"github.com/scholarcast/scholarcast/internal/domain"
)

// JoinRoom runs the join flow: adopt any existing backend role, infer
// host from room ownership, then request the media-session grant. The
// backend may still grant a different role than requested; its answer
// wins.
func JoinRoom(ctx context.Context, dir core.Directory, state *RoomState, roomID domain.RoomID, email string) (*core.RoomGrant, error) {
	state.SetConnectionStatus(true, false)

	if list, err := dir.Participants(ctx, roomID); err == nil {
		state.SetParticipants(list.Participants)
		if list.CurrentUserRole != "" {
			state.SetRole(list.CurrentUserRole)
		}
	} else {
		log.Warn().Err(err).Str("module", "sync").Str("room", string(roomID)).Msg("pre-join participants fetch failed")
	}

	if rooms, err := dir.ListRooms(ctx); err == nil {
		state.SetRooms(rooms)
	} else {
		log.Warn().Err(err).Str("module", "sync").Msg("pre-join room list fetch failed")
	}

	role := state.Role()
	if role == "" || role == domain.RoleViewer {
		for _, r := range state.Rooms() {
			if r.RoomID == roomID && r.OwnedBy(email) {
				role = domain.RoleHost
				break
			}
		}
		if role == "" {
			role = domain.RoleViewer
		}
	}

	grant, err := dir.RoomToken(ctx, roomID, email, role)
	if err != nil {
		state.SetConnectionStatus(false, false)
		return nil, fmt.Errorf("join %s: %w", roomID, err)
	}

	state.SetRoom(roomID)
	state.SetToken(grant.Token)
	if grant.Role != "" {
		state.SetRole(grant.Role)
	} else {
		state.SetRole(role)
	}
	state.SetConnectionStatus(false, true)

	log.Info().Str("module", "sync").Str("room", string(roomID)).Str("role", string(state.Role())).Msg("joined room")
	return grant, nil
}

// LeaveRoom clears local room state. A departing host takes the room
// down with it.
func LeaveRoom(ctx context.Context, dir core.Directory, state *RoomState) {
	roomID := state.RoomID()
	if roomID == "" {
		return
	}
	if state.Role() == domain.RoleHost {
		if err := dir.DeleteRoom(ctx, roomID); err != nil {
			log.Warn().Err(err).Str("module", "sync").Str("room", string(roomID)).Msg("room delete on leave failed")
		}
	}
	state.Leave()
}
