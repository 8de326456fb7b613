package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/secretwall/secretwall/pkg/logger"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request with zap fields.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", c.ClientIP()),
		}
		if u, ok := UserFrom(c); ok {
			fields = append(fields, zap.String("user", u.ID.Hex()))
		}
		switch {
		case status >= 500:
			logger.L().Error("request", fields...)
		case status >= 400:
			logger.L().Warn("request", fields...)
		default:
			logger.L().Info("request", fields...)
		}
	}
}
