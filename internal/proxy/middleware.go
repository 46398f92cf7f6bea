package proxy

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/j-veylop/team-usage-dashboard/internal/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// setCORS writes the permissive CORS headers the dashboard relies on.
func setCORS(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	h.Set("Access-Control-Max-Age", "86400")
}

// corsMiddleware adds CORS headers to every response and answers
// preflight requests for any path.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		setCORS(c.Writer.Header())

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware keeps an incoming X-Request-ID or assigns a new one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// loggingMiddleware logs every request once it completes.
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(requestIDKey),
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("proxy request", args...)
		case status >= 400:
			logger.Warn("proxy request", args...)
		default:
			logger.Info("proxy request", args...)
		}
	}
}

// recoveryHandler turns a handler panic into a 500 JSON response.
func recoveryHandler(c *gin.Context, recovered any) {
	logger.Error("panic while handling request",
		"path", c.Request.URL.Path, "request_id", c.GetString(requestIDKey), "panic", fmt.Sprint(recovered))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal Server Error",
		"message": fmt.Sprint(recovered),
	})
}
