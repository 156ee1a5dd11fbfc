package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"creatorhub/middleware"
	"creatorhub/models"
	"creatorhub/services/feed"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// TierLookup resolves the viewer's current subscription tier.
type TierLookup interface {
	GetByIDWithProjection(ctx context.Context, id string, projection bson.M) (*models.User, error)
}

// FeedHandler exposes feed sessions over HTTP.
type FeedHandler struct {
	Sessions *feed.SessionManager
	Users    TierLookup
}

func NewFeedHandler(sessions *feed.SessionManager, users TierLookup) *FeedHandler {
	return &FeedHandler{Sessions: sessions, Users: users}
}

// CreateSession opens both feeds for the caller and returns the active tab's first page.
func (h *FeedHandler) CreateSession(c *gin.Context) {
	logger := getLogger(c)
	viewerID := middleware.ViewerID(c)

	tier := ""
	if viewerID != "" && h.Users != nil {
		u, err := h.Users.GetByIDWithProjection(c.Request.Context(), viewerID, bson.M{"id": 1, "tier": 1})
		if err != nil {
			logger.Warn("tier lookup failed, gating as free viewer", zap.String("viewer", viewerID), zap.Error(err))
		} else {
			tier = u.Tier
		}
	}

	sess, err := h.Sessions.Create(c.Request.Context(), viewerID, tier)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to open feed session", err.Error())
		return
	}
	view, _ := sess.View("")
	c.JSON(http.StatusCreated, view)
}

// session resolves :id for the caller, writing a 404 when it is unknown.
func (h *FeedHandler) session(c *gin.Context) (*feed.Session, bool) {
	sess, err := h.Sessions.Get(c.Param("id"), middleware.ViewerID(c))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "feed session not found", "")
		return nil, false
	}
	return sess, true
}

// tab reads ?tab=, defaulting to the active tab.
func tab(c *gin.Context, sess *feed.Session) (feed.Tab, bool) {
	raw := c.Query("tab")
	if raw == "" {
		return sess.Coordinator().ActiveTab(), true
	}
	t, err := feed.ParseTab(raw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid tab", "tab must be forYou or following")
		return "", false
	}
	return t, true
}

func (h *FeedHandler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	t, ok := tab(c, sess)
	if !ok {
		return
	}
	h.respond(c, sess, t, http.StatusOK)
}

func (h *FeedHandler) SetTab(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var input struct {
		Tab string `json:"tab" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	t, err := feed.ParseTab(input.Tab)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid tab", "tab must be forYou or following")
		return
	}
	_ = sess.Coordinator().SetActiveTab(t)
	h.respond(c, sess, t, http.StatusOK)
}

func (h *FeedHandler) LoadMore(c *gin.Context) {
	h.withLoader(c, func(ctx context.Context, l feed.Feed) error {
		l.LoadMore(ctx)
		return nil
	})
}

func (h *FeedHandler) Refresh(c *gin.Context) {
	h.withLoader(c, func(ctx context.Context, l feed.Feed) error {
		l.Refresh(ctx)
		return nil
	})
}

// Retry answers 409 once the retry budget is spent; the client should refresh instead.
func (h *FeedHandler) Retry(c *gin.Context) {
	h.withLoader(c, func(ctx context.Context, l feed.Feed) error {
		return l.Retry(ctx)
	})
}

func (h *FeedHandler) withLoader(c *gin.Context, op func(context.Context, feed.Feed) error) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	t, ok := tab(c, sess)
	if !ok {
		return
	}
	loader, err := sess.Coordinator().Loader(t)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid tab", err.Error())
		return
	}

	if err := op(c.Request.Context(), loader); err != nil {
		if errors.Is(err, feed.ErrRetryExhausted) {
			view, _ := sess.View(t)
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "feed": view})
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "feed operation failed", err.Error())
		return
	}
	h.respond(c, sess, t, http.StatusOK)
}

func (h *FeedHandler) respond(c *gin.Context, sess *feed.Session, t feed.Tab, status int) {
	view, err := sess.View(t)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid tab", err.Error())
		return
	}
	c.JSON(status, view)
}

// Stream pushes every state change of the session as a server-sent "state" event,
// starting with the current state of both tabs.
func (h *FeedHandler) Stream(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	updates, stop := sess.Listen()
	defer stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	for _, t := range []feed.Tab{feed.TabForYou, feed.TabFollowing} {
		view, _ := sess.View(t)
		c.SSEvent("state", feed.Update{Tab: t, State: view.State})
	}
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case u, open := <-updates:
			if !open {
				c.SSEvent("closed", gin.H{"sessionId": sess.ID})
				return false
			}
			c.SSEvent("state", u)
			return true
		}
	})
}

func (h *FeedHandler) CloseSession(c *gin.Context) {
	if err := h.Sessions.Close(c.Param("id"), middleware.ViewerID(c)); err != nil {
		utils.JSONError(c, http.StatusNotFound, "feed session not found", "")
		return
	}
	c.Status(http.StatusNoContent)
}
