package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/myanedu/portal-api/internal/service"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
	"github.com/myanedu/portal-api/pkg/response"
)

// ContextSessionKey is the gin context key storing the portal session id.
const ContextSessionKey = "portalSession"

// Session protects routes by requiring a valid portal token. The token only
// identifies the session; whether that session is authenticated is decided
// per-request against the session store.
func Session(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := sessionFromHeader(c, tokens)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextSessionKey, sessionID)
		c.Next()
	}
}

// OptionalSession attaches the session id when a valid token is present but
// does not block guests.
func OptionalSession(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := sessionFromHeader(c, tokens)
		if err == nil {
			c.Set(ContextSessionKey, sessionID)
		}
		c.Next()
	}
}

func sessionFromHeader(c *gin.Context, tokens *service.TokenService) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return tokens.Validate(parts[1])
}
