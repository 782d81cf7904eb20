package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleGuest:
		return true
	}
	return false
}

// Member links a user to a workspace. At most one row exists per pair.
type Member struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_members_workspace_user,priority:1" json:"workspace_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_members_workspace_user,priority:2;index:idx_members_user" json:"user_id"`
	Role        Role      `gorm:"type:varchar(16);not null" json:"role"`
	CreatedAt   time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (m *Member) BeforeCreate(*gorm.DB) error {
	if !m.Role.Valid() {
		return fmt.Errorf("invalid member role %q", m.Role)
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *Member) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}
