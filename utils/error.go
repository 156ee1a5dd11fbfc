package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// AuthRequiredError is returned when an operation needs a signed-in viewer.
type AuthRequiredError struct {
	Operation string
}

func (e *AuthRequiredError) Error() string {
	if e.Operation == "" {
		return "authentication required"
	}
	return "authentication required: " + e.Operation
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.Int("status", status), zap.String("details", details))
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Details: details})
}
