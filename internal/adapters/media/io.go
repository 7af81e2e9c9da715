package media

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/scholarcast/scholarcast/internal/core"
)

func (s *Session) writePump(ctx context.Context, conn *websocket.Conn, send <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-send:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "media").Msg("writePump set deadline")
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "media").Msg("writePump write error")
				return
			}
		}
	}
}

func (s *Session) readPump(ctx context.Context, conn *websocket.Conn) {
	defer log.Info().Str("module", "media").Msg("readPump closing")
	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "media").Msg("readPump read error")
				return
			}
			s.handleEnvelope(data)
		}
	}
}

func (s *Session) handleEnvelope(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "media").Msg("bad signaling json")
		return
	}

	switch env.Type {
	case "joined":
		s.mu.Lock()
		if env.Identity != "" {
			s.localIdentity = env.Identity
		}
		s.localMetadata = env.Metadata
		s.mu.Unlock()
	case "participants":
		s.mu.Lock()
		s.participants = make(map[string]core.ParticipantSnapshot, len(env.Participants))
		for _, p := range env.Participants {
			if p.Identity == s.localIdentity {
				continue
			}
			s.participants[p.Identity] = core.ParticipantSnapshot{
				Identity: p.Identity,
				Name:     p.Name,
				Metadata: p.Metadata,
			}
		}
		s.mu.Unlock()
	case "participant_metadata":
		s.mu.Lock()
		prev := env.PrevMetadata
		if snap, ok := s.participants[env.Identity]; ok {
			if prev == "" {
				prev = snap.Metadata
			}
			snap.Metadata = env.Metadata
			s.participants[env.Identity] = snap
		}
		fn := s.onMetadata
		s.mu.Unlock()
		if fn != nil {
			fn(env.Identity, prev)
		}
	case "data":
		s.mu.RLock()
		fn := s.onData
		s.mu.RUnlock()
		if fn != nil {
			fn(env.Payload, env.From)
		}
	default:
		log.Debug().Str("module", "media").Str("type", env.Type).Msg("unknown signaling message")
	}
}
