package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const MessageTypeText = "text"

type Message struct {
	ID        uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelID uuid.UUID                   `gorm:"type:uuid;not null;index:idx_messages_channel_created,priority:1" json:"channel_id"`
	AuthorID  uuid.UUID                   `gorm:"type:uuid;not null" json:"author_id"`
	Content   string                      `gorm:"type:text;not null" json:"content"`
	Type      string                      `gorm:"type:varchar(16);default:'text'" json:"type"`
	Files     datatypes.JSONSlice[string] `gorm:"not null" json:"files"`
	CreatedAt time.Time                   `gorm:"index:idx_messages_channel_created,priority:2" json:"created_at"`
	EditedAt  *time.Time                  `json:"edited_at,omitempty"`
	DeletedAt *time.Time                  `json:"deleted_at,omitempty"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Type == "" {
		m.Type = MessageTypeText
	}
	if m.Files == nil {
		m.Files = datatypes.JSONSlice[string]{}
	}
	return nil
}

func (m *Message) IsDeleted() bool {
	return m.DeletedAt != nil
}
