package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Arena/internal/adapters/signal"
	"github.com/dkeye/Arena/internal/domain"
)

type LoginRequest struct {
	Name string `json:"name" binding:"max=50,excludes=-"`
}

type UserResponse struct {
	ID   domain.UserID `json:"id"`
	Name string        `json:"name"`
}

const errInvalidName = "Invalid name. Must be 1-50 characters without '-'."

// UserHandlers issue and clear the opaque credential the websocket handshake resolves.
type UserHandlers struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool

	anonymous atomic.Int64
}

func (h *UserHandlers) Register(g *gin.RouterGroup) {
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/me", h.me)
}

func (h *UserHandlers) login(c *gin.Context) {
	var req LoginRequest
	// an empty body logs in anonymously
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidName})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fmt.Sprintf("Anonymous%04d", h.anonymous.Add(1))
	}
	id, err := domain.NewIdentity(name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidName})
		return
	}

	cred := id.Credential()
	h.setCookie(c, cred, int(h.MaxAge.Seconds()))
	sess := sessions.Default(c)
	sess.Set(signal.SessionCredentialKey, cred)
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "transport.http").Msg("save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user session"})
		return
	}

	log.Info().Str("module", "transport.http").Str("user", string(id.ID)).Str("name", id.DisplayName).Msg("login")
	c.JSON(http.StatusOK, UserResponse{ID: id.ID, Name: id.DisplayName})
}

func (h *UserHandlers) logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	sess := sessions.Default(c)
	sess.Clear()
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "transport.http").Msg("clear session")
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *UserHandlers) me(c *gin.Context) {
	id := signal.ResolveIdentity(c, h.CookieName)
	if id == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Message})
		return
	}
	c.JSON(http.StatusOK, UserResponse{ID: id.ID, Name: id.DisplayName})
}

func (h *UserHandlers) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.CookieName, value, maxAge, "/", "", h.Secure, true)
}
