package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/slack-lite/internal/handlers/dto"
	"github.com/thereayou/slack-lite/internal/middleware"
	"github.com/thereayou/slack-lite/internal/services"
)

type MessageHandler struct {
	messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send answers 204 when the message had neither text nor files.
func (h *MessageHandler) Send(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), middleware.CallerID(c), channelID, services.SendMessageInput{
		Text:  req.Text,
		Files: req.Files,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if msg == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) List(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	messages, err := h.messageService.List(c.Request.Context(), middleware.CallerID(c), channelID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *MessageHandler) Edit(c *gin.Context) {
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	msg, err := h.messageService.Edit(c.Request.Context(), middleware.CallerID(c), messageID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.messageService.Delete(c.Request.Context(), middleware.CallerID(c), messageID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
