package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type Channel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID uuid.UUID  `gorm:"type:uuid;not null;index:idx_channels_workspace" json:"workspace_id"`
	Name        string     `gorm:"not null" json:"name"`
	Description string     `json:"description"`
	Visibility  Visibility `gorm:"type:varchar(16);not null;default:'public'" json:"visibility"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (c *Channel) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Channel) IsPublic() bool {
	return c.Visibility != VisibilityPrivate
}

// ChannelMember is an explicit grant of channel access to a workspace member.
// Private channels are only visible through these rows; guests need one even
// for public channels.
type ChannelMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_channel_members_channel_member,priority:1" json:"channel_id"`
	MemberID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_channel_members_channel_member,priority:2;index:idx_channel_members_member" json:"member_id"`
	CreatedAt time.Time `json:"created_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (cm *ChannelMember) BeforeCreate(*gorm.DB) error {
	if cm.ID == uuid.Nil {
		cm.ID = uuid.New()
	}
	return nil
}
