package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"creatorhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/whoami", mw, func(c *gin.Context) {
		c.String(http.StatusOK, ViewerID(c)+"|"+ViewerEmail(c))
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOptionalViewerAuth(t *testing.T) {
	signer := utils.NewTokenSigner("secret")
	r := authRouter(OptionalViewerAuth(signer))

	w := get(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "|", w.Body.String())

	token, err := signer.GenerateToken("v1", "v1@example.com", time.Hour)
	require.NoError(t, err)
	w = get(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v1|v1@example.com", w.Body.String())

	w = get(r, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireViewerAuth(t *testing.T) {
	signer := utils.NewTokenSigner("secret")
	r := authRouter(RequireViewerAuth(signer))

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Insufficient authorization")

	token, err := signer.GenerateToken("v1", "", time.Hour)
	require.NoError(t, err)
	w = get(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v1|", w.Body.String())
}
