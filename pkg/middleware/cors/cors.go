// Package cors answers browser preflights for the portal frontend.
package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// The portal is consumed by a single-page app, so the surface is fixed:
// JSON bodies with bearer tokens, SSE resume headers, and receipt
// downloads that the browser must be able to read the filename of.
const (
	allowMethods  = "GET, POST, PUT, DELETE, OPTIONS"
	allowHeaders  = "Authorization, Content-Type, Last-Event-ID"
	exposeHeaders = "X-Request-ID, Content-Disposition"
	maxAge        = "7200"
)

// New returns a middleware that reflects origins from the configured
// allow list. An empty list permits any origin but without credentials,
// since wildcard origins and cookies cannot be combined.
func New(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[normalize(origin)] = struct{}{}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		switch {
		case origin == "":
			// Same-origin or non-browser caller, nothing to negotiate.
		case len(allowed) == 0:
			h.Set("Access-Control-Allow-Origin", "*")
		default:
			if _, ok := allowed[normalize(origin)]; ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		h.Set("Access-Control-Expose-Headers", exposeHeaders)
		c.Next()
	}
}

func normalize(origin string) string {
	return strings.ToLower(strings.TrimRight(origin, "/"))
}
