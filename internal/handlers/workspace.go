package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/slack-lite/internal/handlers/dto"
	"github.com/thereayou/slack-lite/internal/logger"
	"github.com/thereayou/slack-lite/internal/middleware"
	"github.com/thereayou/slack-lite/internal/services"
)

type WorkspaceHandler struct {
	workspaceService services.WorkspaceService
	presenceService  services.PresenceService
}

func NewWorkspaceHandler(workspaceService services.WorkspaceService, presenceService services.PresenceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService, presenceService: presenceService}
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req dto.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ws, err := h.workspaceService.Create(c.Request.Context(), middleware.CallerID(c), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	list, err := h.workspaceService.List(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ws, err := h.workspaceService.Get(c.Request.Context(), middleware.CallerID(c), workspaceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (h *WorkspaceHandler) Update(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ws, err := h.workspaceService.Update(c.Request.Context(), middleware.CallerID(c), workspaceID, services.UpdateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (h *WorkspaceHandler) Join(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.JoinWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	member, err := h.workspaceService.Join(c.Request.Context(), middleware.CallerID(c), workspaceID, req.JoinCode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *WorkspaceHandler) RegenerateJoinCode(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	code, err := h.workspaceService.RegenerateJoinCode(c.Request.Context(), middleware.CallerID(c), workspaceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.JoinCodeResponse{JoinCode: code})
}

func (h *WorkspaceHandler) Invite(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{WorkspaceID: workspaceID.String()})

	var req dto.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.workspaceService.Invite(ctx, middleware.CallerID(c), workspaceID, req.Email); err != nil {
		writeError(c, err)
		return
	}

	slog.InfoContext(ctx, "invite accepted for delivery")
	c.Status(http.StatusAccepted)
}

// Presence lists every member of the workspace with their online flag.
func (h *WorkspaceHandler) Presence(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.presenceService.Workspace(c.Request.Context(), middleware.CallerID(c), workspaceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
