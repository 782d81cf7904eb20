package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/thereayou/slack-lite/internal/models"
)

func (d *Database) CreateChannel(ctx context.Context, channel *models.Channel) error {
	if err := d.conn(ctx).Create(channel).Error; err != nil {
		return fmt.Errorf("create channel: %w", translate(err))
	}
	return nil
}

func (d *Database) GetChannel(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	var channel models.Channel
	if err := d.conn(ctx).First(&channel, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &channel, nil
}

func (d *Database) GetWorkspaceChannels(ctx context.Context, workspaceID uuid.UUID) ([]models.Channel, error) {
	var channels []models.Channel
	err := d.conn(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&channels).Error
	if err != nil {
		return nil, fmt.Errorf("get workspace channels: %w", err)
	}
	return channels, nil
}

func (d *Database) AddChannelMember(ctx context.Context, cm *models.ChannelMember) error {
	if err := d.conn(ctx).Create(cm).Error; err != nil {
		return fmt.Errorf("add channel member: %w", translate(err))
	}
	return nil
}

func (d *Database) IsChannelMember(ctx context.Context, channelID, memberID uuid.UUID) (bool, error) {
	var n int64
	err := d.conn(ctx).Model(&models.ChannelMember{}).
		Where("channel_id = ? AND member_id = ?", channelID, memberID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check channel member: %w", err)
	}
	return n > 0, nil
}

// GetChannelMembers returns the explicitly granted members of a channel with
// their users loaded.
func (d *Database) GetChannelMembers(ctx context.Context, channelID uuid.UUID) ([]models.Member, error) {
	var members []models.Member
	err := d.conn(ctx).
		Preload("User").
		Joins("JOIN channel_members ON channel_members.member_id = members.id").
		Where("channel_members.channel_id = ?", channelID).
		Order("channel_members.created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("get channel members: %w", err)
	}
	return members, nil
}

// GetMemberChannelIDs returns the ids of channels memberID was explicitly added to.
func (d *Database) GetMemberChannelIDs(ctx context.Context, memberID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.conn(ctx).Model(&models.ChannelMember{}).
		Where("member_id = ?", memberID).
		Pluck("channel_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("get member channels: %w", err)
	}
	return ids, nil
}
