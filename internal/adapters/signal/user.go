package signal

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/dkeye/Arena/internal/domain"
)

// SessionCredentialKey is where the login handler stores the credential in the cookie session.
const SessionCredentialKey = "credential"

// ResolveIdentity reads the opaque credential from the named cookie, falling
// back to the gin session. nil means the connection is unauthenticated.
func ResolveIdentity(c *gin.Context, cookieName string) *domain.Identity {
	if raw, err := c.Cookie(cookieName); err == nil {
		if id, ok := domain.ParseCredential(raw); ok {
			return &id
		}
	}
	if raw, ok := sessions.Default(c).Get(SessionCredentialKey).(string); ok {
		if id, ok := domain.ParseCredential(raw); ok {
			return &id
		}
	}
	return nil
}
