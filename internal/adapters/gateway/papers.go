package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HandlePaperSearch answers GET /api/papers/search?query. The backend
// status and JSON body are relayed as-is; a non-JSON upstream failure
// is wrapped so the client always gets JSON.
func (g *Gateway) HandlePaperSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}
	auth := c.GetHeader("Authorization")
	if auth == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	upstream := g.backend + "/api/papers/search?query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, upstream, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	req.Header.Set("Authorization", auth)

	resp, err := g.http.Do(req)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.gateway").Msg("papers backend unreachable")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if !json.Valid(body) {
		log.Error().Int("status", resp.StatusCode).Str("module", "adapters.gateway").Msg("non-JSON papers backend response")
		c.JSON(resp.StatusCode, gin.H{"error": fmt.Sprintf("backend server error (%d)", resp.StatusCode)})
		return
	}
	c.Data(resp.StatusCode, "application/json", body)
}
