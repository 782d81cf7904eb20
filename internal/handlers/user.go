package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/slack-lite/internal/middleware"
	"github.com/thereayou/slack-lite/internal/services"
)

type UserHandler struct {
	authService     services.AuthService
	presenceService services.PresenceService
}

func NewUserHandler(authService services.AuthService, presenceService services.PresenceService) *UserHandler {
	return &UserHandler{authService: authService, presenceService: presenceService}
}

// Me returns the caller's record, or null for anonymous requests.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.authService.CurrentUser(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.presenceService.User(c.Request.Context(), middleware.CallerID(c), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
