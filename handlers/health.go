package handlers

import (
	"net/http"

	"creatorhub/services/feed"
	"creatorhub/services/realtime"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Sessions *feed.SessionManager
	Realtime *realtime.Hub
}

// Health reports backing service status and the number of live feed sessions.
func (h *HealthHandler) Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.CheckedAt.IsZero() && (!status.Mongo || !status.Redis) {
		code = http.StatusServiceUnavailable
	}
	live := 0
	if h.Sessions != nil {
		live = h.Sessions.Len()
	}
	subscribers := 0
	if h.Realtime != nil {
		subscribers = h.Realtime.Subscribers()
	}
	c.JSON(code, gin.H{
		"status":              http.StatusText(code),
		"services":            status,
		"feedSessions":        live,
		"realtimeSubscribers": subscribers,
	})
}
