// Package gateway is the same-origin HTTP surface the web client talks
// to: media-token issuance and the authenticated papers-search proxy.
package gateway

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/scholarcast/scholarcast/internal/adapters/media"
	"github.com/scholarcast/scholarcast/internal/config"
)

type Gateway struct {
	backend string
	http    *http.Client
	minter  *media.TokenMinter
}

func New(cfg *config.Config) *Gateway {
	return &Gateway{
		backend: cfg.BackendURL,
		http:    &http.Client{Timeout: 20 * time.Second},
		minter: &media.TokenMinter{
			APIKey:    cfg.MediaAPIKey,
			APISecret: cfg.MediaAPISecret,
			TTL:       cfg.TokenTTL,
		},
	}
}

// SetHTTPClient overrides the upstream transport, mainly for tests.
func (g *Gateway) SetHTTPClient(h *http.Client) { g.http = h }

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware pins an anonymous client identifier to each
// browser so logs correlate across requests.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, g *Gateway) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ScholarCastSessions", store))
	r.Use(ClientTokenMiddleware())

	log.Info().Str("module", "adapters.gateway").Str("backend", cfg.BackendURL).Msg("router setup")

	api := r.Group("/api")
	api.GET("/token", g.HandleToken)
	api.GET("/papers/search", g.HandlePaperSearch)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
