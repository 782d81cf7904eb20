package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/thereayou/slack-lite/internal/models"
)

func (d *Database) CreateMember(ctx context.Context, member *models.Member) error {
	if err := d.conn(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("create member: %w", translate(err))
	}
	return nil
}

func (d *Database) GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (*models.Member, error) {
	var member models.Member
	err := d.conn(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

// GetWorkspaceMembers returns the members of a workspace with their users loaded.
func (d *Database) GetWorkspaceMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.Member, error) {
	var members []models.Member
	err := d.conn(ctx).
		Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("get workspace members: %w", err)
	}
	return members, nil
}
