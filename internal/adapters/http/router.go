// Package http wires the JSON API and the live websocket endpoint.
package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ianderson/ClerkBot/internal/app"
	"github.com/ianderson/ClerkBot/internal/assistant"
	"github.com/ianderson/ClerkBot/internal/config"
	"github.com/ianderson/ClerkBot/internal/core"
	"github.com/ianderson/ClerkBot/internal/domain"
	"github.com/ianderson/ClerkBot/internal/live"
)

// Deps is everything the handlers reach into.
type Deps struct {
	Library   core.Library
	Flows     *app.Registry
	Sessions  *live.Registry
	Assistant assistant.Assistant
	User      *domain.Participant
	Folders   []string
	Default   string
}

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware pins an anonymous identity to the browser so each
// client gets its own capture workflow.
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

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ClerkSessions", store))
	r.Use(ClientTokenMiddleware())

	h := &handlers{deps: deps}
	wsCtl := &live.Controller{
		Sessions:  deps.Sessions,
		Limiter:   live.NewJoinLimiter(cfg.JoinLimit, cfg.JoinInterval),
		ReadLimit: cfg.ReadLimit,
	}

	api := r.Group("/api")

	api.GET("/me", h.me)
	api.PATCH("/me", h.updateMe)
	api.GET("/folders", h.folders)

	api.GET("/meetings", h.listMeetings)
	api.GET("/meetings/:id", h.getMeeting)
	api.PATCH("/meetings/:id/actions/:itemID", h.setActionItem)

	api.POST("/capture", h.startCapture)
	api.GET("/capture", h.captureStatus)
	api.POST("/capture/save", h.saveCapture)
	api.POST("/capture/join", h.joinConnected)
	api.DELETE("/capture", h.cancelCapture)

	api.POST("/assistant/chat", h.chat)
	api.POST("/assistant/summarize/:id", h.summarize)
	api.POST("/assistant/followup/:id", h.followUp)

	r.GET("/ws/live", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws live endpoint hit")
		wsCtl.Handle(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
