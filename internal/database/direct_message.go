package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/slack-lite/internal/models"
)

func (d *Database) SaveDirectMessage(ctx context.Context, dm *models.DirectMessage) error {
	if err := d.conn(ctx).Create(dm).Error; err != nil {
		return fmt.Errorf("save direct message: %w", translate(err))
	}
	return nil
}

func (d *Database) GetDirectMessage(ctx context.Context, id uuid.UUID) (*models.DirectMessage, error) {
	var dm models.DirectMessage
	err := d.conn(ctx).
		Preload("Sender").
		Preload("Recipient").
		First(&dm, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &dm, nil
}

func (d *Database) EditDirectMessage(ctx context.Context, id uuid.UUID, content string, at time.Time) error {
	res := d.conn(ctx).Model(&models.DirectMessage{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{"content": content, "edited_at": at})
	if res.Error != nil {
		return fmt.Errorf("edit direct message: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) SoftDeleteDirectMessage(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := d.conn(ctx).Model(&models.DirectMessage{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if res.Error != nil {
		return fmt.Errorf("delete direct message: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetConversation returns the messages exchanged between a and b in a
// workspace, in either direction, oldest first.
func (d *Database) GetConversation(ctx context.Context, workspaceID, a, b uuid.UUID) ([]models.DirectMessage, error) {
	var dms []models.DirectMessage
	err := d.conn(ctx).
		Preload("Sender").
		Preload("Recipient").
		Where("workspace_id = ?", workspaceID).
		Where("((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?))", a, b, b, a).
		Order("created_at ASC").
		Find(&dms).Error
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return dms, nil
}

// MarkConversationRead flags every unread message sent by senderID to
// recipientID as read and returns how many rows changed.
func (d *Database) MarkConversationRead(ctx context.Context, workspaceID, senderID, recipientID uuid.UUID) (int64, error) {
	res := d.conn(ctx).Model(&models.DirectMessage{}).
		Where("workspace_id = ? AND sender_id = ? AND recipient_id = ? AND read = ?", workspaceID, senderID, recipientID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark conversation read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
