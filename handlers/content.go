package handlers

import (
	"errors"
	"net/http"

	"creatorhub/middleware"
	"creatorhub/models"
	"creatorhub/services/content"
	"creatorhub/services/feed"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	Svc content.ContentService
}

func NewContentHandler(svc content.ContentService) *ContentHandler {
	return &ContentHandler{Svc: svc}
}

// CreateContent publishes a post or video for the signed-in creator.
func (h *ContentHandler) CreateContent(c *gin.Context) {
	var req models.CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	rec, err := h.Svc.Create(c.Request.Context(), middleware.ViewerID(c), req)
	if err != nil {
		if errors.Is(err, content.ErrEmptyContent) {
			utils.JSONError(c, http.StatusBadRequest, "invalid content", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to publish content", err.Error())
		return
	}

	item, err := feed.Transform(*rec)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to render content", err.Error())
		return
	}
	c.JSON(http.StatusCreated, item)
}
