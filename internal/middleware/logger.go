package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aschalew-star/tenderalert/pkg/logger"
)

// Logger writes a structured access log for each request. Authenticated
// requests carry the acting recipient so notification reads can be traced
// back to their owner.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("bytes", c.Writer.Size()),
		}
		if recipient, ok := RecipientFrom(c); ok {
			fields = append(fields, zap.String("recipient", recipient.Key()))
		}

		logger.WithModule("http").Info("request", fields...)
	}
}
