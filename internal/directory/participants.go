package directory

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/scholarcast/scholarcast/internal/core"
	"github.com/scholarcast/scholarcast/internal/domain"
)

// Participants fetches the authoritative membership for a room. When
// the backend omits currentUserRole the caller's record is located by
// the isCurrentUser flag or by (case-insensitive) email match.
func (c *Client) Participants(ctx context.Context, roomID domain.RoomID) (*core.ParticipantList, error) {
	var list core.ParticipantList
	if err := c.do(ctx, http.MethodGet, "/api/livestream/rooms/"+string(roomID)+"/participants/", nil, nil, &list, false); err != nil {
		return nil, err
	}
	if list.CurrentUserRole == "" {
		for _, p := range list.Participants {
			if p.IsCurrentUser || strings.EqualFold(p.Username, c.email) {
				list.CurrentUserRole = p.Role
				break
			}
		}
	}
	return &list, nil
}

func (c *Client) UpdateRole(ctx context.Context, roomID domain.RoomID, participantID string, role domain.Role) error {
	payload := struct {
		Role domain.Role `json:"role"`
	}{Role: role}
	path := "/api/livestream/rooms/" + string(roomID) + "/participants/" + participantID + "/role/"
	return c.do(ctx, http.MethodPost, path, nil, payload, nil, true)
}

// RoomToken asks the backend for a media-session access token. The
// granted role may differ from the requested one; the backend decides.
func (c *Client) RoomToken(ctx context.Context, roomID domain.RoomID, username string, role domain.Role) (*core.RoomGrant, error) {
	q := url.Values{}
	q.Set("username", username)
	q.Set("role", string(role))
	var grant core.RoomGrant
	if err := c.do(ctx, http.MethodGet, "/api/livestream/rooms/"+string(roomID)+"/token", q, nil, &grant, true); err != nil {
		return nil, err
	}
	if grant.RoomID == "" {
		grant.RoomID = roomID
	}
	return &grant, nil
}
