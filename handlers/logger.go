package handlers

import (
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves a Zap logger from the Gin context or falls back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// RequestLogger stores a request-scoped logger in the context for handlers to pick up.
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("logger", base.With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		))
		c.Next()
	}
}
