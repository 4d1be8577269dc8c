package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/YoungCoderboy/chessme-copy/internal/adapters/signal"
	"github.com/YoungCoderboy/chessme-copy/internal/app"
	"github.com/YoungCoderboy/chessme-copy/internal/config"
)

// ClientTokenMiddleware tags every browser with a stable token cookie.
// The token identifies the client across page reloads, unlike the
// per-connection id which dies with the websocket.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ChessSessions", store))
	r.Use(ClientTokenMiddleware())

	// Production deployments serve the built web client from the same
	// process; in development the client dev server runs separately.
	if cfg.ServeStatic {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	ctrl := signal.NewController(orch, cfg)
	api := r.Group("/api")
	api.GET("/ws", func(c *gin.Context) {
		ctrl.HandleWS(ctx, c)
	})

	return r
}
