package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scholarcast/scholarcast/internal/core"
	"github.com/scholarcast/scholarcast/internal/domain"
)

const (
	defaultParticipantsInterval = 5 * time.Second
	defaultMetadataInterval     = 2 * time.Second
	defaultExtractsInterval     = 5 * time.Second
)

// Options wires a Synchronizer. Zero intervals get defaults.
type Options struct {
	RoomID    domain.RoomID
	Email     string
	Directory core.Directory
	Session   core.MediaSession
	State     *RoomState

	ParticipantsInterval time.Duration
	MetadataInterval     time.Duration
	ExtractsInterval     time.Duration
}

// Synchronizer runs the poll + broadcast reconciliation for one room.
// The backend directory always wins; session metadata and local state
// are corrected to follow it within one poll interval.
type Synchronizer struct {
	roomID  domain.RoomID
	email   string
	dir     core.Directory
	session core.MediaSession
	state   *RoomState
	hub     *MetadataHub
	limiter *RefreshLimiter

	participantsInterval time.Duration
	metadataInterval     time.Duration
	extractsInterval     time.Duration

	runCtx context.Context

	mu                gosync.Mutex
	lastReconnectRole domain.Role
}

func New(opts Options) *Synchronizer {
	if opts.State == nil {
		opts.State = NewRoomState()
	}
	if opts.ParticipantsInterval <= 0 {
		opts.ParticipantsInterval = defaultParticipantsInterval
	}
	if opts.MetadataInterval <= 0 {
		opts.MetadataInterval = defaultMetadataInterval
	}
	if opts.ExtractsInterval <= 0 {
		opts.ExtractsInterval = defaultExtractsInterval
	}
	return &Synchronizer{
		roomID:               opts.RoomID,
		email:                opts.Email,
		dir:                  opts.Directory,
		session:              opts.Session,
		state:                opts.State,
		hub:                  NewMetadataHub(),
		limiter:              NewRefreshLimiter(2, 2*time.Second),
		participantsInterval: opts.ParticipantsInterval,
		metadataInterval:     opts.MetadataInterval,
		extractsInterval:     opts.ExtractsInterval,
	}
}

func (s *Synchronizer) State() *RoomState { return s.state }

// Run registers session handlers, does an initial pull of both lists
// and then polls until the context is cancelled. Poll failures are
// logged and skipped; the next tick retries.
func (s *Synchronizer) Run(ctx context.Context) error {
	s.runCtx = ctx

	s.session.OnData(s.handleData)
	s.hub.Attach(s.session)
	s.hub.Subscribe(func(MetadataEvent) {
		s.SyncParticipants(ctx)
	})

	s.SyncParticipants(ctx)
	s.SyncExtracts(ctx)

	participants := time.NewTicker(s.participantsInterval)
	metadata := time.NewTicker(s.metadataInterval)
	extracts := time.NewTicker(s.extractsInterval)
	defer participants.Stop()
	defer metadata.Stop()
	defer extracts.Stop()

	log.Info().Str("module", "sync").Str("room", string(s.roomID)).Msg("synchronizer started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "sync").Str("room", string(s.roomID)).Msg("synchronizer stopped")
			return nil
		case <-participants.C:
			s.SyncParticipants(ctx)
		case <-metadata.C:
			s.ensureMetadata(ctx)
		case <-extracts.C:
			s.SyncExtracts(ctx)
		}
	}
}

// SyncParticipants re-fetches the authoritative membership and adopts
// the backend's view of the caller's role. A no-op without a room.
func (s *Synchronizer) SyncParticipants(ctx context.Context) {
	if s.roomID == "" {
		return
	}
	list, err := s.dir.Participants(ctx, s.roomID)
	if err != nil {
		log.Warn().Err(err).Str("module", "sync").Str("room", string(s.roomID)).Msg("participants poll failed")
		return
	}
	s.state.SetParticipants(list.Participants)
	if list.CurrentUserRole != "" && list.CurrentUserRole != s.state.Role() {
		s.state.SetRole(list.CurrentUserRole)
	}
	s.ensureMetadata(ctx)
}

// ensureMetadata rewrites the local session metadata whenever it
// disagrees with the held role. Write failures are logged only; the
// next tick tries again.
func (s *Synchronizer) ensureMetadata(ctx context.Context) {
	role := s.state.Role()
	if role == "" {
		return
	}
	if declared, ok := DecodeRoleMetadata(s.session.LocalMetadata()); ok && declared == role {
		return
	}
	if err := s.session.SetLocalMetadata(ctx, EncodeRoleMetadata(role)); err != nil {
		log.Warn().Err(err).Str("module", "sync").Msg("metadata write failed")
	}
}

// RemoteRole resolves a session participant's role against the current
// caches (declared metadata, host identity, directory match).
func (s *Synchronizer) RemoteRole(snap core.ParticipantSnapshot) domain.Role {
	return ResolveRole(snap, s.state.HostID(), s.state.Participants())
}

func (s *Synchronizer) handleData(payload []byte, sender string) {
	m, ok := decodeMessage(payload)
	if !ok {
		log.Debug().Str("module", "sync").Str("sender", sender).Msg("dropping malformed data message")
		return
	}
	ctx := s.runCtx
	if ctx == nil {
		ctx = context.Background()
	}

	switch m.Type {
	case MsgRoleUpdate:
		s.handleRoleUpdate(ctx, m)
	case MsgRefreshParticipants:
		if s.limiter.Allow(MsgRefreshParticipants) {
			s.SyncParticipants(ctx)
		}
	case MsgExtractShared, MsgRequestExtractRefresh:
		if s.limiter.Allow(MsgExtractShared) {
			s.refreshExtracts(ctx, false)
		}
	default:
		log.Debug().Str("module", "sync").Str("type", m.Type).Msg("unknown data message")
	}
}

// handleRoleUpdate applies a targeted role push: adopt the role,
// refetch the directory, then cycle the session so the token's publish
// permissions are recomputed. The reconnect fires once per distinct
// role value; repeats of the same role are no-ops.
func (s *Synchronizer) handleRoleUpdate(ctx context.Context, m DataMessage) {
	role, ok := domain.ParseRole(string(m.Role))
	if !ok {
		log.Warn().Str("module", "sync").Str("role", string(m.Role)).Msg("role update with unknown role")
		return
	}
	s.state.SetRole(role)
	s.SyncParticipants(ctx)

	s.mu.Lock()
	if s.lastReconnectRole == role {
		s.mu.Unlock()
		return
	}
	s.lastReconnectRole = role
	s.mu.Unlock()

	log.Info().Str("module", "sync").Str("role", string(role)).Msg("role pushed, cycling session for new permissions")
	s.state.SetConnectionStatus(true, false)
	if err := s.session.Reconnect(ctx); err != nil {
		log.Error().Err(err).Str("module", "sync").Msg("session reconnect failed")
		s.state.SetConnectionStatus(false, false)
		return
	}
	s.state.SetConnectionStatus(false, true)
	s.ensureMetadata(ctx)
}

// publish sends one best-effort data message. Delivery is neither
// acknowledged nor retried; the poll is the backstop.
func (s *Synchronizer) publish(ctx context.Context, m DataMessage, destinations ...string) {
	err := s.session.PublishData(ctx, m.encode(), core.PublishOptions{Destinations: destinations})
	if err != nil {
		log.Warn().Err(err).Str("module", "sync").Str("type", m.Type).Msg("data publish failed")
	}
}
