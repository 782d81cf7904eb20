package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/slack-lite/internal/handlers/dto"
	"github.com/thereayou/slack-lite/internal/middleware"
	"github.com/thereayou/slack-lite/internal/services"
)

// SessionCloser drops live connections opened with a token.
type SessionCloser interface {
	CloseSession(token string) int
}

type AuthHandler struct {
	authService services.AuthService
	sessions    SessionCloser
}

func NewAuthHandler(authService services.AuthService, sessions SessionCloser) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAuthResponse(res))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	slog.InfoContext(c.Request.Context(), "user logged in", "user_id", res.User.ID)
	c.JSON(http.StatusOK, dto.ToAuthResponse(res))
}

// Logout blacklists the token the request was authenticated with and closes
// any websocket opened with it.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.Token(c)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		writeError(c, err)
		return
	}
	if h.sessions != nil {
		if n := h.sessions.CloseSession(token); n > 0 {
			slog.InfoContext(c.Request.Context(), "closed websocket sessions on logout", "count", n)
		}
	}
	c.Status(http.StatusNoContent)
}
