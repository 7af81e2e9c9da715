package sync

import (
	"testing"
	"time"

	"github.com/scholarcast/scholarcast/internal/domain"
)

func TestAddExtractDeduplicates(t *testing.T) {
	state := NewRoomState()
	shared := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	state.AddExtract(domain.SharedExtract{ID: "e1", Title: "A", SharedAt: shared})
	state.AddExtract(domain.SharedExtract{ID: "e1", Title: "A", SharedAt: shared})
	if got := state.Extracts(); len(got) != 1 {
		t.Fatalf("same share event must not duplicate, got %d entries", len(got))
	}

	// Same id shared again later is a distinct event.
	state.AddExtract(domain.SharedExtract{ID: "e1", Title: "A", SharedAt: shared.Add(time.Hour)})
	if got := state.Extracts(); len(got) != 2 {
		t.Fatalf("re-share at a new time must append, got %d entries", len(got))
	}
}

func TestSetExtractsSorts(t *testing.T) {
	state := NewRoomState()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	state.SetExtracts([]domain.SharedExtract{
		{ID: "late", SharedAt: base.Add(time.Hour)},
		{ID: "early", SharedAt: base},
	})

	got := state.Extracts()
	if got[0].ID != "early" || got[1].ID != "late" {
		t.Fatalf("extracts must be oldest first, got %s then %s", got[0].ID, got[1].ID)
	}
}

func TestHostIDResolvesFromRoomList(t *testing.T) {
	state := NewRoomState()
	state.SetRoom("room-1")
	state.SetRooms([]domain.Room{
		{RoomID: "other", HostID: "bob@example.org"},
		{RoomID: "room-1", HostID: "ada@example.org"},
	})

	if got := state.HostID(); got != "ada@example.org" {
		t.Fatalf("expected host ada@example.org, got %q", got)
	}

	state.SetRoom("unknown")
	if got := state.HostID(); got != "" {
		t.Fatalf("unknown room must resolve to empty host, got %q", got)
	}
}

func TestLeaveClearsRoomState(t *testing.T) {
	state := NewRoomState()
	state.SetRoom("room-1")
	state.SetRole(domain.RoleHost)
	state.SetToken("jwt")
	state.SetParticipants([]domain.Participant{{ID: "1"}})
	state.SetRooms([]domain.Room{{RoomID: "room-1"}})
	state.SetConnectionStatus(false, true)

	state.Leave()

	if state.RoomID() != "" || state.Role() != "" || state.Token() != "" {
		t.Error("room, role and token must be cleared")
	}
	if len(state.Participants()) != 0 || state.Connected() {
		t.Error("participants and connection status must be cleared")
	}
	if len(state.Rooms()) != 1 {
		t.Error("the room list survives a leave")
	}
}
