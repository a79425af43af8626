package middleware

import (
	"net/http"
	"time"

	"stockmaster/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrorHandler turns errors attached with c.Error into the API envelope.
// Bind errors become 400; anything else is logged and answered with a
// generic 500. A handler that already wrote its response keeps it.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		if err.IsType(gin.ErrorTypeBind) {
			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New(err.Error()))
			}
			return
		}

		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err.Err).
			Msg("unhandled error")
		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Interno())
		}
	}
}

// Recovery converts a panic into a 500 without exposing its value.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("path", c.Request.URL.Path).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Interno())
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request. The level follows the status: 5xx at
// error, 4xx at warn. Authenticated requests carry the user id and role.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev = ev.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP())
		if claims := GetClaims(c); claims != nil {
			ev = ev.Str("user_id", claims.UserID).Str("rol", claims.Rol)
		}
		ev.Msg("request")
	}
}
