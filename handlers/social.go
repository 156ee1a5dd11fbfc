package handlers

import (
	"errors"
	"net/http"

	communityRepo "creatorhub/database/repository/community"
	"creatorhub/middleware"
	"creatorhub/services/social"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
)

type SocialHandler struct {
	Svc social.SocialService
}

func NewSocialHandler(svc social.SocialService) *SocialHandler {
	return &SocialHandler{Svc: svc}
}

func (h *SocialHandler) Follow(c *gin.Context) {
	creatorID := c.Param("id")
	if err := h.Svc.Follow(c.Request.Context(), middleware.ViewerID(c), creatorID); err != nil {
		if errors.Is(err, social.ErrSelfFollow) {
			utils.JSONError(c, http.StatusBadRequest, "invalid follow", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to follow", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": true, "creatorId": creatorID})
}

func (h *SocialHandler) Unfollow(c *gin.Context) {
	creatorID := c.Param("id")
	if err := h.Svc.Unfollow(c.Request.Context(), middleware.ViewerID(c), creatorID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to unfollow", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": false, "creatorId": creatorID})
}

func (h *SocialHandler) JoinCommunity(c *gin.Context) {
	count, err := h.Svc.JoinCommunity(c.Request.Context(), c.Param("id"), middleware.ViewerID(c))
	if err != nil {
		communityError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": true, "memberCount": count})
}

func (h *SocialHandler) LeaveCommunity(c *gin.Context) {
	count, err := h.Svc.LeaveCommunity(c.Request.Context(), c.Param("id"), middleware.ViewerID(c))
	if err != nil {
		communityError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": false, "memberCount": count})
}

func communityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, communityRepo.ErrCommunityNotFound):
		utils.JSONError(c, http.StatusNotFound, "community not found", "")
	case errors.Is(err, communityRepo.ErrAlreadyMember), errors.Is(err, communityRepo.ErrNotMember):
		utils.JSONError(c, http.StatusConflict, err.Error(), "")
	default:
		utils.JSONError(c, http.StatusInternalServerError, "membership update failed", err.Error())
	}
}
