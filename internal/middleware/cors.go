package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsHeaders = "Authorization, Content-Type, X-Request-ID"
	// Content-Disposition carries the file name of invoice PDFs and CSV exports.
	corsExpose = "X-Request-ID, Content-Disposition, Retry-After"
)

// CORS answers preflight requests and sets the allow headers. origins comes
// from CORS_ALLOWED_ORIGINS; an empty list or "*" admits any origin.
// Preflights from an origin outside the list get 403.
func CORS(origins []string) gin.HandlerFunc {
	permitidos := make(map[string]bool, len(origins))
	cualquiera := len(origins) == 0
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			cualquiera = true
		}
		if o != "" {
			permitidos[o] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		preflight := c.Request.Method == http.MethodOptions

		switch {
		case cualquiera:
			c.Header("Access-Control-Allow-Origin", "*")
		case permitidos[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		case preflight && origin != "":
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Header("Access-Control-Allow-Methods", corsMethods)
		c.Header("Access-Control-Allow-Headers", corsHeaders)
		c.Header("Access-Control-Expose-Headers", corsExpose)
		if preflight {
			c.Header("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
