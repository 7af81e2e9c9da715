package sync

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/scholarcast/scholarcast/internal/domain"
)

var errCannotShare = fmt.Errorf("viewers cannot share extracts")

// ShareExtract persists a reference through the backend, then
// broadcasts a re-pull signal. The message never carries the extract
// itself; the backend list is the single source of truth.
func (s *Synchronizer) ShareExtract(ctx context.Context, extract domain.SharedExtract) error {
	if !s.state.Role().CanBroadcast() {
		return errCannotShare
	}

	saved, err := s.dir.ShareExtract(ctx, s.roomID, extract)
	if err != nil {
		return fmt.Errorf("share extract: %w", err)
	}
	s.state.AddExtract(*saved)
	log.Info().Str("module", "sync").Str("title", saved.Title).Msg("extract shared")

	m := newMessage(MsgExtractShared)
	m.RoomID = string(s.roomID)
	s.publish(ctx, m)

	s.refreshExtracts(ctx, false)
	return nil
}

// SyncExtracts is the polling entry point: re-pull the list and nudge
// peers to do the same (rate-limited so pulls don't ping-pong).
func (s *Synchronizer) SyncExtracts(ctx context.Context) {
	s.refreshExtracts(ctx, true)
}

func (s *Synchronizer) refreshExtracts(ctx context.Context, nudgePeers bool) {
	if s.roomID == "" {
		return
	}
	extracts, err := s.dir.SharedExtracts(ctx, s.roomID)
	if err != nil {
		log.Warn().Err(err).Str("module", "sync").Str("room", string(s.roomID)).Msg("extracts poll failed")
		return
	}
	s.state.SetExtracts(extracts)

	if nudgePeers && s.limiter.Allow(MsgRequestExtractRefresh) {
		m := newMessage(MsgRequestExtractRefresh)
		m.RoomID = string(s.roomID)
		s.publish(ctx, m)
	}
}
