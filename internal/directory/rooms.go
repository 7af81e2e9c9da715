package directory

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/scholarcast/scholarcast/internal/domain"
)

var ErrNoOwnedRoom = errors.New("backend reports an active room but none is owned by this user")

func (c *Client) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	if err := c.do(ctx, http.MethodGet, "/api/livestream/rooms", nil, nil, &rooms, false); err != nil {
		return nil, err
	}
	return rooms, nil
}

// CreateRoom registers a new room with the caller as host. The backend
// rejects a second active room per user with a 400; that case is
// recovered by re-listing rooms and returning the caller's existing one.
func (c *Client) CreateRoom(ctx context.Context, title string, interests []string) (*domain.Room, error) {
	if interests == nil {
		interests = []string{}
	}
	payload := struct {
		Name              string   `json:"name"`
		ResearchInterests []string `json:"research_interests"`
	}{Name: title, ResearchInterests: interests}

	var room domain.Room
	err := c.do(ctx, http.MethodPost, "/api/livestream/rooms/create", nil, payload, &room, true)
	if err == nil {
		return &room, nil
	}
	if !IsAlreadyHosting(err) {
		return nil, err
	}

	log.Info().Str("module", "directory").Str("email", c.email).Msg("already hosting, looking up existing room")
	rooms, listErr := c.ListRooms(ctx)
	if listErr != nil {
		return nil, listErr
	}
	for i := range rooms {
		if rooms[i].OwnedBy(c.email) {
			return &rooms[i], nil
		}
	}
	return nil, ErrNoOwnedRoom
}

func (c *Client) DeleteRoom(ctx context.Context, roomID domain.RoomID) error {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/livestream/rooms/"+string(roomID)+"/delete", nil, nil, &resp, false); err != nil {
		return err
	}
	if !resp.Success {
		return errors.New("room delete not confirmed")
	}
	return nil
}

func (c *Client) ResearchInterests(ctx context.Context) ([]string, error) {
	var interests []string
	if err := c.do(ctx, http.MethodGet, "/api/livestream/research-interests", nil, nil, &interests, false); err != nil {
		return nil, err
	}
	return interests, nil
}
