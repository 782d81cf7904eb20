package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/slack-lite/internal/handlers/dto"
	"github.com/thereayou/slack-lite/internal/middleware"
	"github.com/thereayou/slack-lite/internal/services"
)

type DirectMessageHandler struct {
	dmService services.DirectMessageService
}

func NewDirectMessageHandler(dmService services.DirectMessageService) *DirectMessageHandler {
	return &DirectMessageHandler{dmService: dmService}
}

func (h *DirectMessageHandler) Send(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipientID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	var req dto.SendDirectMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	dm, err := h.dmService.Send(c.Request.Context(), middleware.CallerID(c), workspaceID, recipientID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	if dm == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, dm)
}

func (h *DirectMessageHandler) List(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	otherID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	dms, err := h.dmService.List(c.Request.Context(), middleware.CallerID(c), workspaceID, otherID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dms)
}

func (h *DirectMessageHandler) MarkRead(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	otherID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	n, err := h.dmService.MarkRead(c.Request.Context(), middleware.CallerID(c), workspaceID, otherID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MarkReadResponse{Updated: n})
}

func (h *DirectMessageHandler) Edit(c *gin.Context) {
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.EditDirectMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	dm, err := h.dmService.Edit(c.Request.Context(), middleware.CallerID(c), messageID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dm)
}

func (h *DirectMessageHandler) Delete(c *gin.Context) {
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.dmService.Delete(c.Request.Context(), middleware.CallerID(c), messageID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
