package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/slack-lite/internal/handlers/dto"
	"github.com/thereayou/slack-lite/internal/middleware"
	"github.com/thereayou/slack-lite/internal/services"
)

type PresenceHandler struct {
	presenceService services.PresenceService
}

func NewPresenceHandler(presenceService services.PresenceService) *PresenceHandler {
	return &PresenceHandler{presenceService: presenceService}
}

// Heartbeat serves clients that are not holding a WebSocket open.
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	if err := h.presenceService.Heartbeat(c.Request.Context(), middleware.CallerID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PresenceHandler) Me(c *gin.Context) {
	seen, err := h.presenceService.LastSeen(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LastSeenResponse{LastSeen: seen})
}
