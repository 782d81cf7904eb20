package dto

import "github.com/google/uuid"

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,max=80"`
}

type UpdateWorkspaceRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=80"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

type JoinWorkspaceRequest struct {
	JoinCode string `json:"join_code" binding:"required"`
}

type JoinCodeResponse struct {
	JoinCode string `json:"join_code"`
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type CreateChannelRequest struct {
	Name        string `json:"name" binding:"required,max=80"`
	Description string `json:"description" binding:"max=500"`
	Visibility  string `json:"visibility" binding:"omitempty,oneof=public private"`
}

type AddChannelMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}
