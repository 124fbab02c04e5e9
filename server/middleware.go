package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cineanalyst/cineanalyst/log"
)

const requestIDKey = "request_id"

// RequestID tags every request with a unique ID, honoring an inbound
// X-Request-ID header when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

// AccessLog writes one line per request with method, path, status and
// latency. Server errors log at error level.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		requestID := c.GetString(requestIDKey)
		status := c.Writer.Status()
		latency := time.Since(start)

		if status >= 500 {
			log.Error("[%s] %s %s -> %d (%s)", requestID, c.Request.Method, path, status, latency)
			return
		}
		log.Info("[%s] %s %s -> %d (%s)", requestID, c.Request.Method, path, status, latency)
	}
}
