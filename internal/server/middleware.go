package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chaintab/chaintab/internal/auth"
)

// userIDKey is the gin context key for the authenticated user id.
const userIDKey = "user_id"

// UserID extracts the authenticated user id from the context.
// Returns empty string for unauthenticated requests.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// JWTMiddleware validates the bearer token and stores the caller identity.
func JWTMiddleware(manager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
			return
		}
		claims, err := manager.Validate(h[7:])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// RequestLogger logs every request with the fields the rest of the service
// logs with: route, user, status, duration.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Milliseconds()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"user_id", UserID(c),
			"duration_ms", duration,
		}
		switch {
		case status >= 500:
			slog.Error("request failed", fields...)
		case status >= 400:
			slog.Warn("request rejected", fields...)
		default:
			slog.Info("request ok", fields...)
		}
	}
}

// Metrics records per-route request counts and latencies.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		requestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
