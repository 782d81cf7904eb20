package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/thereayou/slack-lite/internal/models"
)

func (d *Database) CreateWorkspace(ctx context.Context, ws *models.Workspace) error {
	if err := d.conn(ctx).Create(ws).Error; err != nil {
		return fmt.Errorf("create workspace: %w", translate(err))
	}
	return nil
}

func (d *Database) GetWorkspace(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	var ws models.Workspace
	if err := d.conn(ctx).First(&ws, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &ws, nil
}

func (d *Database) UpdateWorkspace(ctx context.Context, ws *models.Workspace) error {
	if err := d.conn(ctx).Save(ws).Error; err != nil {
		return fmt.Errorf("update workspace: %w", translate(err))
	}
	return nil
}

// GetUserWorkspaces returns every workspace userID holds a membership in.
func (d *Database) GetUserWorkspaces(ctx context.Context, userID uuid.UUID) ([]models.Workspace, error) {
	var workspaces []models.Workspace
	err := d.conn(ctx).
		Joins("JOIN members ON members.workspace_id = workspaces.id").
		Where("members.user_id = ?", userID).
		Order("workspaces.created_at ASC").
		Find(&workspaces).Error
	if err != nil {
		return nil, fmt.Errorf("get user workspaces: %w", err)
	}
	return workspaces, nil
}
