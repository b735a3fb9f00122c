package handlers

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs basic request details and latency.
func RequestLogger(logger *log.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Printf(
			"request method=%s path=%s status=%d duration=%s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
