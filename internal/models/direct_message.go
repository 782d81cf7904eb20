package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DirectMessage belongs to the conversation formed by the unordered
// (SenderID, RecipientID) pair inside one workspace.
type DirectMessage struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID uuid.UUID  `gorm:"type:uuid;not null;index:idx_dms_conversation,priority:1" json:"workspace_id"`
	SenderID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_dms_conversation,priority:2" json:"sender_id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index:idx_dms_conversation,priority:3" json:"recipient_id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Read        bool       `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time  `json:"created_at"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`

	Sender    *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Recipient *User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}

func (dm *DirectMessage) BeforeCreate(*gorm.DB) error {
	if dm.ID == uuid.Nil {
		dm.ID = uuid.New()
	}
	return nil
}

func (dm *DirectMessage) IsDeleted() bool {
	return dm.DeletedAt != nil
}

// Involves reports whether userID is one side of the conversation.
func (dm *DirectMessage) Involves(userID uuid.UUID) bool {
	return dm.SenderID == userID || dm.RecipientID == userID
}
