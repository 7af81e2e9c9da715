package sync

import (
	"context"
	gosync "sync"

	"github.com/scholarcast/scholarcast/internal/core"
	"github.com/scholarcast/scholarcast/internal/domain"
)

type fakeDirectory struct {
	mu gosync.Mutex

	participants     []domain.Participant
	currentRole      domain.Role
	participantCalls int
	participantsErr  error

	rooms []domain.Room

	// createGate, when set, holds CreateRoom in flight until closed.
	createGate chan struct{}
	host       string

	extracts     []domain.SharedExtract
	extractCalls int

	roleUpdates []string
	grant       core.RoomGrant
	deleted     []domain.RoomID
}

func (f *fakeDirectory) Participants(context.Context, domain.RoomID) (*core.ParticipantList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.participantCalls++
	if f.participantsErr != nil {
		return nil, f.participantsErr
	}
	return &core.ParticipantList{
		Participants:    append([]domain.Participant(nil), f.participants...),
		CurrentUserRole: f.currentRole,
	}, nil
}

func (f *fakeDirectory) UpdateRole(_ context.Context, _ domain.RoomID, participantID string, role domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleUpdates = append(f.roleUpdates, participantID+":"+string(role))
	for i := range f.participants {
		if f.participants[i].ID.String() == participantID {
			f.participants[i].Role = role
		}
	}
	return nil
}

func (f *fakeDirectory) ListRooms(context.Context) ([]domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Room(nil), f.rooms...), nil
}

func (f *fakeDirectory) CreateRoom(_ context.Context, title string, _ []string) (*domain.Room, error) {
	if f.createGate != nil {
		<-f.createGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	room := domain.Room{ID: "1", RoomID: "room-1", Title: title, HostID: f.host}
	f.rooms = append(f.rooms, room)
	f.participants = append(f.participants, domain.Participant{
		ID:            "1",
		Username:      f.host,
		Role:          domain.RoleHost,
		IsCurrentUser: true,
	})
	f.currentRole = domain.RoleHost
	return &room, nil
}

func (f *fakeDirectory) DeleteRoom(_ context.Context, roomID domain.RoomID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, roomID)
	return nil
}

func (f *fakeDirectory) ResearchInterests(context.Context) ([]string, error) { return nil, nil }

func (f *fakeDirectory) ShareExtract(_ context.Context, _ domain.RoomID, extract domain.SharedExtract) (*domain.SharedExtract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extracts = append(f.extracts, extract)
	return &extract, nil
}

func (f *fakeDirectory) SharedExtracts(context.Context, domain.RoomID) ([]domain.SharedExtract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extractCalls++
	return append([]domain.SharedExtract(nil), f.extracts...), nil
}

func (f *fakeDirectory) RoomToken(context.Context, domain.RoomID, string, domain.Role) (*core.RoomGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &f.grant, nil
}

func (f *fakeDirectory) setRole(role domain.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentRole = role
}

func (f *fakeDirectory) calls() (participants, extracts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.participantCalls, f.extractCalls
}

type published struct {
	payload      []byte
	destinations []string
}

type fakeSession struct {
	mu gosync.Mutex

	identity    string
	metadata    string
	remoteMeta  map[string]string
	publishes   []published
	reconnects  int
	metadataErr error

	onData func(payload []byte, sender string)
	onMeta func(identity, prev string)
}

func newFakeSession(identity string) *fakeSession {
	return &fakeSession{identity: identity, remoteMeta: make(map[string]string)}
}

func (f *fakeSession) LocalIdentity() string { return f.identity }

func (f *fakeSession) LocalMetadata() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metadata
}

func (f *fakeSession) SetLocalMetadata(_ context.Context, metadata string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.metadataErr != nil {
		return f.metadataErr
	}
	f.metadata = metadata
	return nil
}

func (f *fakeSession) SetParticipantMetadata(_ context.Context, identity, metadata string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remoteMeta[identity] = metadata
	return nil
}

func (f *fakeSession) Participants() []core.ParticipantSnapshot { return nil }

func (f *fakeSession) PublishData(_ context.Context, payload []byte, opts core.PublishOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publishes = append(f.publishes, published{payload: payload, destinations: opts.Destinations})
	return nil
}

func (f *fakeSession) OnData(fn func([]byte, string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onData = fn
}

func (f *fakeSession) OnMetadataChanged(fn func(string, string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onMeta = fn
}

func (f *fakeSession) Reconnect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnects++
	return nil
}

func (f *fakeSession) Close() {}

func (f *fakeSession) reconnectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reconnects
}

func (f *fakeSession) messages() []DataMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]DataMessage, 0, len(f.publishes))
	for _, p := range f.publishes {
		if m, ok := decodeMessage(p.payload); ok {
			out = append(out, m)
		}
	}
	return out
}
