package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/slack-lite/internal/handlers/dto"
	"github.com/thereayou/slack-lite/internal/middleware"
	"github.com/thereayou/slack-lite/internal/models"
	"github.com/thereayou/slack-lite/internal/services"
)

type ChannelHandler struct {
	channelService services.ChannelService
}

func NewChannelHandler(channelService services.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

func (h *ChannelHandler) Create(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	channel, err := h.channelService.Create(c.Request.Context(), middleware.CallerID(c), workspaceID, services.CreateChannelInput{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  models.Visibility(req.Visibility),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, channel)
}

func (h *ChannelHandler) List(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	channels, err := h.channelService.List(c.Request.Context(), middleware.CallerID(c), workspaceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, channels)
}

func (h *ChannelHandler) Get(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	channel, err := h.channelService.Get(c.Request.Context(), middleware.CallerID(c), channelID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

func (h *ChannelHandler) Members(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	members, err := h.channelService.Members(c.Request.Context(), middleware.CallerID(c), channelID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *ChannelHandler) AddMember(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AddChannelMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.channelService.AddMember(c.Request.Context(), middleware.CallerID(c), channelID, req.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
