package middleware

import (
	"net/http"
	"strings"

	"creatorhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ViewerIDKey holds the signed-in viewer's id in the gin context.
	ViewerIDKey = "viewerID"
	// ViewerEmailKey holds the viewer's email when the token carries one.
	ViewerEmailKey = "viewerEmail"
)

// ViewerExtractor turns a bearer token into viewer claims.
type ViewerExtractor interface {
	ExtractViewer(token string) (*utils.ViewerClaims, error)
}

// OptionalViewerAuth sets the viewer when a valid bearer token is present and lets the
// request through anonymously otherwise. A token that is present but invalid is rejected.
func OptionalViewerAuth(signer ViewerExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present := bearerToken(c)
		if !present {
			c.Next()
			return
		}
		if !setViewer(c, signer, token) {
			return
		}
		c.Next()
	}
}

// RequireViewerAuth rejects requests without a valid bearer token.
func RequireViewerAuth(signer ViewerExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present := bearerToken(c)
		if !present {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
				Error:   "Insufficient authorization",
				Details: (&utils.AuthRequiredError{Operation: c.FullPath()}).Error(),
			})
			return
		}
		if !setViewer(c, signer, token) {
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

func setViewer(c *gin.Context, signer ViewerExtractor, token string) bool {
	claims, err := signer.ExtractViewer(token)
	if err != nil {
		zap.L().Debug("rejected viewer token", zap.String("ip", getClientIP(c)), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Invalid token"})
		return false
	}
	c.Set(ViewerIDKey, claims.ViewerID)
	c.Set(ViewerEmailKey, claims.Email)
	return true
}

// ViewerID returns the signed-in viewer, or "" for anonymous requests.
func ViewerID(c *gin.Context) string {
	return c.GetString(ViewerIDKey)
}

func ViewerEmail(c *gin.Context) string {
	return c.GetString(ViewerEmailKey)
}
