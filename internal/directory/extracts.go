package directory

import (
	"context"
	"net/http"

	"github.com/scholarcast/scholarcast/internal/domain"
)

// ShareExtract persists a shared reference into the room. The saved
// record (with server-side id and timestamp) comes back in the response.
func (c *Client) ShareExtract(ctx context.Context, roomID domain.RoomID, extract domain.SharedExtract) (*domain.SharedExtract, error) {
	var resp struct {
		Extract *domain.SharedExtract `json:"extract"`
	}
	path := "/api/livestream/rooms/" + string(roomID) + "/share-extract/"
	if err := c.do(ctx, http.MethodPost, path, nil, extract, &resp, true); err != nil {
		return nil, err
	}
	if resp.Extract == nil {
		return &extract, nil
	}
	return resp.Extract, nil
}

func (c *Client) SharedExtracts(ctx context.Context, roomID domain.RoomID) ([]domain.SharedExtract, error) {
	var resp struct {
		Extracts []domain.SharedExtract `json:"extracts"`
	}
	path := "/api/livestream/rooms/" + string(roomID) + "/shared-extracts/"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Extracts, nil
}
