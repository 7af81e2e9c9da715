package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/scholarcast/scholarcast/internal/core"
	"github.com/scholarcast/scholarcast/internal/domain"
)

var (
	ErrNotModerator        = errors.New("only hosts and moderators may change roles")
	ErrParticipantNotFound = errors.New("participant not found in directory")
)

// ChangeRole is the host action: update the backend record, then push
// the change out so the affected client reacts before its next poll.
// Everything after the backend write is best-effort.
func (s *Synchronizer) ChangeRole(ctx context.Context, target core.ParticipantSnapshot, newRole domain.Role) error {
	if !s.state.Role().CanModerate() {
		return ErrNotModerator
	}

	// Refresh the directory first so the fuzzy match runs against
	// current records.
	s.SyncParticipants(ctx)

	record := MatchDirectoryParticipant(s.state.Participants(), target)
	if record == nil {
		return fmt.Errorf("%w: %s", ErrParticipantNotFound, target.DisplayName())
	}

	if err := s.dir.UpdateRole(ctx, s.roomID, record.ID.String(), newRole); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	log.Info().Str("module", "sync").Str("participant", record.Username).Str("role", string(newRole)).Msg("role updated")

	s.SyncParticipants(ctx)

	// Correct the target's declared metadata so peers that trust
	// metadata see the new role without a directory hit.
	if err := s.session.SetParticipantMetadata(ctx, target.Identity, EncodeRoleMetadata(newRole)); err != nil {
		log.Warn().Err(err).Str("module", "sync").Str("identity", target.Identity).Msg("remote metadata write failed")
	}

	targeted := newMessage(MsgRoleUpdate)
	targeted.Role = newRole
	targeted.ForceRefresh = true
	s.publish(ctx, targeted, target.Identity)

	broadcast := newMessage(MsgRefreshParticipants)
	broadcast.ChangedParticipantID = target.Identity
	broadcast.NewRole = newRole
	s.publish(ctx, broadcast)

	return nil
}
