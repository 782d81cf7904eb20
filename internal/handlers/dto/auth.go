package dto

import (
	"time"

	"github.com/thereayou/slack-lite/internal/models"
	"github.com/thereayou/slack-lite/internal/services"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User           *models.User `json:"user"`
	Token          string       `json:"token"`
	TokenExpiresAt time.Time    `json:"token_expires_at"`
}

func ToAuthResponse(res *services.AuthResult) AuthResponse {
	return AuthResponse{
		User:           res.User,
		Token:          res.Token,
		TokenExpiresAt: res.ExpiresAt,
	}
}
