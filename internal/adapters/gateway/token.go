package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/scholarcast/scholarcast/internal/domain"
)

// HandleToken answers GET /api/token?room&username&role. With provider
// credentials configured the grant is minted locally; otherwise the
// request is forwarded to the backend, which owns role assignment.
func (g *Gateway) HandleToken(c *gin.Context) {
	room := c.Query("room")
	username := c.Query("username")
	roleParam := c.DefaultQuery("role", string(domain.RoleViewer))

	if room == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": `missing "room" query parameter`})
		return
	}
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": `missing "username" query parameter`})
		return
	}

	role, ok := domain.ParseRole(roleParam)
	if !ok {
		role = domain.RoleViewer
	}

	if g.minter.Configured() {
		token, err := g.minter.Mint(domain.RoomID(room), username, username, role)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.gateway").Msg("local token mint failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get token", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":       token,
			"room_id":     room,
			"role":        role,
			"can_publish": role.CanBroadcast(),
		})
		return
	}

	q := url.Values{}
	q.Set("role", string(role))
	q.Set("username", username)
	upstream := g.backend + "/api/livestream/rooms/" + url.PathEscape(room) + "/token?" + q.Encode()

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, upstream, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get token", "details": err.Error()})
		return
	}
	if auth := c.GetHeader("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	} else {
		log.Warn().Str("module", "adapters.gateway").Str("room", room).Msg("token request without auth header")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get token", "details": err.Error()})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get token", "details": err.Error()})
		return
	}
	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Str("module", "adapters.gateway").Msg("backend token error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get token", "details": string(body)})
		return
	}
	if !json.Valid(body) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get token", "details": "invalid backend response"})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}
