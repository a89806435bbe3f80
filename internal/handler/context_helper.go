package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/myanedu/portal-api/internal/middleware"
)

func sessionIDFromContext(c *gin.Context) string {
	value, exists := c.Get(middleware.ContextSessionKey)
	if !exists {
		return ""
	}
	sessionID, ok := value.(string)
	if !ok {
		return ""
	}
	return sessionID
}
