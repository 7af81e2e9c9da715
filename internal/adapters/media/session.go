// Package media adapts the hosted real-time media provider's session
// surface to core.MediaSession. Only the signaling websocket is spoken
// here; media transport, negotiation and data-channel delivery are
// owned by the provider.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/scholarcast/scholarcast/internal/core"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("session closed")
)

// TokenFunc supplies a fresh access token for each (re)connect.
// Permissions are baked into the token, which is why Reconnect exists.
type TokenFunc func(ctx context.Context) (string, error)

// envelope is the signaling wire format, both directions. Payload is
// base64 on the wire (encoding/json's []byte default).
type envelope struct {
	Type         string        `json:"type"`
	Identity     string        `json:"identity,omitempty"`
	Name         string        `json:"name,omitempty"`
	Metadata     string        `json:"metadata,omitempty"`
	PrevMetadata string        `json:"prev_metadata,omitempty"`
	From         string        `json:"from,omitempty"`
	To           []string      `json:"to,omitempty"`
	Payload      []byte        `json:"payload,omitempty"`
	Participants []participant `json:"participants,omitempty"`
}

type participant struct {
	Identity string `json:"identity"`
	Name     string `json:"name,omitempty"`
	Metadata string `json:"metadata,omitempty"`
}

// Session implements core.MediaSession over the provider's websocket.
type Session struct {
	wsURL   string
	tokenFn TokenFunc

	mu            sync.RWMutex
	conn          *websocket.Conn
	send          chan []byte
	closed        bool
	cancelPumps   context.CancelFunc
	localIdentity string
	localName     string
	localMetadata string
	participants  map[string]core.ParticipantSnapshot

	onData     func(payload []byte, senderIdentity string)
	onMetadata func(identity, prevMetadata string)
}

// Connect dials the provider and starts the IO pumps. identity and
// name describe the local participant; the token authorizes the join.
func Connect(ctx context.Context, wsURL, identity, name string, tokenFn TokenFunc) (*Session, error) {
	s := &Session{
		wsURL:         wsURL,
		tokenFn:       tokenFn,
		localIdentity: identity,
		localName:     name,
		participants:  make(map[string]core.ParticipantSnapshot),
	}
	if err := s.dial(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) dial(ctx context.Context) error {
	token, err := s.tokenFn(ctx)
	if err != nil {
		return err
	}

	u, err := url.Parse(s.wsURL)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("access_token", token)
	q.Set("identity", s.localIdentity)
	q.Set("name", s.localName)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return err
	}

	pumpCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.conn = conn
	s.send = make(chan []byte, 32)
	s.closed = false
	s.cancelPumps = cancel
	s.participants = make(map[string]core.ParticipantSnapshot)
	s.mu.Unlock()

	go s.writePump(pumpCtx, conn, s.send)
	go s.readPump(pumpCtx, conn)

	log.Info().Str("module", "media").Str("identity", s.localIdentity).Msg("media session connected")
	return nil
}

func (s *Session) LocalIdentity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localIdentity
}

func (s *Session) LocalMetadata() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localMetadata
}

func (s *Session) SetLocalMetadata(ctx context.Context, metadata string) error {
	if err := s.sendEnvelope(envelope{Type: "set_metadata", Metadata: metadata}); err != nil {
		return err
	}
	s.mu.Lock()
	s.localMetadata = metadata
	s.mu.Unlock()
	return nil
}

func (s *Session) SetParticipantMetadata(ctx context.Context, identity, metadata string) error {
	return s.sendEnvelope(envelope{Type: "set_participant_metadata", Identity: identity, Metadata: metadata})
}

func (s *Session) Participants() []core.ParticipantSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.ParticipantSnapshot, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, p)
	}
	return out
}

func (s *Session) PublishData(ctx context.Context, payload []byte, opts core.PublishOptions) error {
	return s.sendEnvelope(envelope{Type: "data", To: opts.Destinations, Payload: payload})
}

func (s *Session) OnData(fn func(payload []byte, senderIdentity string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onData = fn
}

func (s *Session) OnMetadataChanged(fn func(identity, prevMetadata string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMetadata = fn
}

// Reconnect tears down the current connection and dials again with a
// freshly issued token. Handlers survive; the participant view is
// rebuilt from the provider's next snapshot.
func (s *Session) Reconnect(ctx context.Context) error {
	s.teardown()
	// Give the provider a beat to reap the old session before rejoining
	// with the same identity.
	select {
	case <-time.After(300 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.dial(ctx)
}

func (s *Session) Close() {
	s.teardown()
	log.Info().Str("module", "media").Str("identity", s.localIdentity).Msg("media session closed")
}

func (s *Session) teardown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cancelPumps != nil {
		s.cancelPumps()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
	close(s.send)
	s.mu.Unlock()
}

// sendEnvelope marshals and enqueues without blocking; a full send
// queue is surfaced as backpressure rather than stalling the caller.
func (s *Session) sendEnvelope(env envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed || s.send == nil {
		return ErrClosed
	}
	select {
	case s.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}
