package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/slack-lite/internal/models"
)

func (d *Database) SaveMessage(ctx context.Context, message *models.Message) error {
	if err := d.conn(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("save message: %w", translate(err))
	}
	return nil
}

func (d *Database) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := d.conn(ctx).Preload("Author").First(&message, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &message, nil
}

// EditMessage replaces the content of a live message. It reports ErrNotFound
// when the message does not exist or has been deleted in the meantime.
func (d *Database) EditMessage(ctx context.Context, id uuid.UUID, content string, at time.Time) error {
	res := d.conn(ctx).Model(&models.Message{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{"content": content, "edited_at": at})
	if res.Error != nil {
		return fmt.Errorf("edit message: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteMessage sets deleted_at once. A message that is already deleted
// is reported as ErrNotFound.
func (d *Database) SoftDeleteMessage(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := d.conn(ctx).Model(&models.Message{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if res.Error != nil {
		return fmt.Errorf("delete message: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetChannelMessages returns a channel's messages oldest first, deleted ones
// included, with authors loaded.
func (d *Database) GetChannelMessages(ctx context.Context, channelID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := d.conn(ctx).
		Preload("Author").
		Where("channel_id = ?", channelID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("get channel messages: %w", err)
	}
	return messages, nil
}
