package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Arena/internal/adapters/signal"
	"github.com/dkeye/Arena/internal/app/orch"
	"github.com/dkeye/Arena/internal/config"
	"github.com/dkeye/Arena/internal/core"
	transport "github.com/dkeye/Arena/internal/transport/http"
)

func signalOptions(cfg *config.Config) signal.Options {
	return signal.Options{
		ReadLimit:        cfg.ReadLimit,
		PingPeriod:       cfg.PingPeriod,
		PongWait:         cfg.PongWait,
		WriteWait:        cfg.WriteWait,
		SendBuffer:       cfg.SendBuffer,
		FrameRateLimit:   cfg.FrameRateLimit,
		CredentialCookie: cfg.CredentialCookie,
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.CredentialMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Mode == "release",
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("ArenaSessions", store))

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	started := time.Now()
	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"uptime":      time.Since(started).Seconds(),
			"environment": cfg.Mode,
		})
	})

	users := &transport.UserHandlers{
		CookieName: cfg.CredentialCookie,
		MaxAge:     cfg.CredentialMaxAge,
		Secure:     cfg.Mode == "release",
	}
	users.Register(api.Group("/user"))

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.Rooms.ListJoinable()})
	})

	ctrl := signal.NewSignalWSController(o, signalOptions(cfg))
	api.GET("/ws/game", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("remote", c.ClientIP()).Msg("ws game endpoint hit")
		ctrl.HandleSignal(ctx, c, core.NamespaceGame)
	})
	api.GET("/ws/office", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("remote", c.ClientIP()).Msg("ws office endpoint hit")
		ctrl.HandleSignal(ctx, c, core.NamespaceOffice)
	})
	api.GET("/ws/chat", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("remote", c.ClientIP()).Msg("ws chat endpoint hit")
		ctrl.HandleSignal(ctx, c, core.NamespaceChat)
	})

	return r
}
