package sync

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/scholarcast/scholarcast/internal/domain"
)

// RoomState is the process-local cache of room membership and shared
// references. All mutation funnels through setters; readers get copies.
// There is no locking subtlety here beyond the RWMutex: the backend is
// authoritative and any stale read self-heals within one poll interval.
type RoomState struct {
	mu sync.RWMutex

	roomID       domain.RoomID
	role         domain.Role
	participants []domain.Participant
	rooms        []domain.Room
	extracts     []domain.SharedExtract

	token      string
	connecting bool
	connected  bool
}

func NewRoomState() *RoomState {
	return &RoomState{}
}

func (s *RoomState) SetRoom(roomID domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = roomID
	log.Info().Str("module", "sync.state").Str("room", string(roomID)).Msg("current room set")
}

func (s *RoomState) RoomID() domain.RoomID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomID
}

func (s *RoomState) SetRole(role domain.Role) {
	s.mu.Lock()
	prev := s.role
	s.role = role
	s.mu.Unlock()
	if prev != role {
		log.Info().Str("module", "sync.state").Str("prev", string(prev)).Str("role", string(role)).Msg("role changed")
	}
}

func (s *RoomState) Role() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *RoomState) SetParticipants(participants []domain.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants = append([]domain.Participant(nil), participants...)
}

func (s *RoomState) Participants() []domain.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Participant(nil), s.participants...)
}

func (s *RoomState) SetRooms(rooms []domain.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = append([]domain.Room(nil), rooms...)
}

func (s *RoomState) Rooms() []domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Room(nil), s.rooms...)
}

// HostID resolves the declared host of the current room from the
// cached room list, empty when unknown.
func (s *RoomState) HostID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rooms {
		if r.RoomID == s.roomID {
			return r.HostID
		}
	}
	return ""
}

// SetExtracts replaces the shared-reference list, kept sorted by share
// time so the panel renders oldest-first.
func (s *RoomState) SetExtracts(extracts []domain.SharedExtract) {
	sorted := append([]domain.SharedExtract(nil), extracts...)
	domain.SortExtracts(sorted)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extracts = sorted
}

// AddExtract appends one extract unless the same share event is already
// present.
func (s *RoomState) AddExtract(extract domain.SharedExtract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.extracts {
		if e.Same(extract) {
			return
		}
	}
	s.extracts = append(s.extracts, extract)
	domain.SortExtracts(s.extracts)
}

func (s *RoomState) Extracts() []domain.SharedExtract {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SharedExtract(nil), s.extracts...)
}

func (s *RoomState) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *RoomState) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *RoomState) SetConnectionStatus(connecting, connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connecting = connecting
	s.connected = connected
}

func (s *RoomState) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Leave clears everything tied to the current room. Room list and
// nothing else survives, matching the UI's leave semantics.
func (s *RoomState) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roomID == "" {
		return
	}
	log.Info().Str("module", "sync.state").Str("room", string(s.roomID)).Msg("leaving room")
	s.roomID = ""
	s.role = ""
	s.participants = nil
	s.extracts = nil
	s.token = ""
	s.connecting = false
	s.connected = false
}
