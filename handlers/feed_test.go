package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	contentRepo "creatorhub/database/repository/content"
	"creatorhub/middleware"
	"creatorhub/models"
	"creatorhub/services/feed"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type switchSource struct {
	mu   sync.Mutex
	fail bool
}

func (s *switchSource) setFail(v bool) {
	s.mu.Lock()
	s.fail = v
	s.mu.Unlock()
}

func (s *switchSource) FetchPage(_ context.Context, q contentRepo.PageQuery) (*contentRepo.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("store unavailable")
	}
	if q.Cursor == "" {
		return &contentRepo.Page{
			Records: []models.ContentRecord{
				{ID: "p1", CreatorID: "c1", ContentType: "post", Content: "hi"},
				{ID: "p2", CreatorID: "c2", ContentType: "post", Content: "yo"},
			},
			NextCursor: "c1",
			HasMore:    true,
		}, nil
	}
	return &contentRepo.Page{
		Records: []models.ContentRecord{{ID: "p3", CreatorID: "c1", ContentType: "post", Content: "more"}},
	}, nil
}

type staticFollows struct{}

func (staticFollows) FollowingIDs(context.Context, string) ([]string, error) {
	return []string{"c1"}, nil
}

func (staticFollows) IsFollowing(_ context.Context, _, id string) (bool, error) {
	return id == "c1", nil
}

type stubTiers struct{}

func (stubTiers) GetByIDWithProjection(_ context.Context, id string, _ bson.M) (*models.User, error) {
	return &models.User{ID: id, Tier: "premium"}, nil
}

type feedFixture struct {
	router *gin.Engine
	source *switchSource
	token  string
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	src := &switchSource{}
	sessions := feed.NewSessionManager(context.Background(), feed.SessionDeps{
		Source:  src,
		Follows: staticFollows{},
	}, feed.SessionConfig{PageSize: 2, SuggestionStride: 10, Tiers: feed.NewTierPolicy([]string{"basic", "premium"})})
	t.Cleanup(sessions.CloseAll)

	signer := utils.NewTokenSigner("secret")
	token, err := signer.GenerateToken("viewer", "", time.Hour)
	require.NoError(t, err)

	h := NewFeedHandler(sessions, stubTiers{})
	r := gin.New()
	api := r.Group("/feed", middleware.OptionalViewerAuth(signer))
	api.POST("", h.CreateSession)
	api.GET("/:id", h.GetSession)
	api.PUT("/:id/tab", h.SetTab)
	api.POST("/:id/more", h.LoadMore)
	api.POST("/:id/retry", h.Retry)
	api.POST("/:id/refresh", h.Refresh)
	api.DELETE("/:id", h.CloseSession)
	return &feedFixture{router: r, source: src, token: token}
}

func (f *feedFixture) do(t *testing.T, method, path, body string) (int, feed.View) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var view feed.View
	if w.Code == http.StatusOK || w.Code == http.StatusCreated {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	}
	return w.Code, view
}

func itemIDs(items []models.ContentItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestFeedSessionLifecycle(t *testing.T) {
	f := newFeedFixture(t)

	code, view := f.do(t, http.MethodPost, "/feed", "")
	require.Equal(t, http.StatusCreated, code)
	id := view.SessionID
	assert.Equal(t, feed.TabForYou, view.Tab)
	assert.Equal(t, []string{"p1", "p2"}, itemIDs(view.Items))
	assert.True(t, view.HasMore)

	code, view = f.do(t, http.MethodPost, "/feed/"+id+"/more", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"p1", "p2", "p3"}, itemIDs(view.Items))
	assert.False(t, view.HasMore)

	code, view = f.do(t, http.MethodPut, "/feed/"+id+"/tab", `{"tab": "following"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, feed.TabFollowing, view.ActiveTab)
	assert.Equal(t, []string{"p1"}, itemIDs(view.Items))

	code, _ = f.do(t, http.MethodPut, "/feed/"+id+"/tab", `{"tab": "trending"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, http.MethodDelete, "/feed/"+id, "")
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = f.do(t, http.MethodGet, "/feed/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFeedRetryExhaustedAnswers409(t *testing.T) {
	f := newFeedFixture(t)
	f.source.setFail(true)

	code, view := f.do(t, http.MethodPost, "/feed", "")
	require.Equal(t, http.StatusCreated, code)
	id := view.SessionID
	assert.Equal(t, feed.StatusFailed, view.Status)
	assert.True(t, view.CanRetry)

	for i := 0; i < feed.MaxRetries; i++ {
		code, view = f.do(t, http.MethodPost, "/feed/"+id+"/retry", "")
		require.Equal(t, http.StatusOK, code)
	}
	assert.False(t, view.CanRetry)

	code, _ = f.do(t, http.MethodPost, "/feed/"+id+"/retry", "")
	assert.Equal(t, http.StatusConflict, code)

	f.source.setFail(false)
	code, view = f.do(t, http.MethodPost, "/feed/"+id+"/refresh", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, feed.StatusLoaded, view.Status)
	assert.Zero(t, view.RetryCount)
}

func TestFeedUnknownSession(t *testing.T) {
	f := newFeedFixture(t)

	code, _ := f.do(t, http.MethodGet, "/feed/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, code)
}
