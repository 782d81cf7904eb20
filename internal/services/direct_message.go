package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/slack-lite/internal/database"
	"github.com/thereayou/slack-lite/internal/models"
)

type DirectMessageService interface {
	Send(ctx context.Context, callerID, workspaceID, recipientID uuid.UUID, content string) (*DirectMessageView, error)
	Edit(ctx context.Context, callerID, messageID uuid.UUID, content string) (*DirectMessageView, error)
	Delete(ctx context.Context, callerID, messageID uuid.UUID) error
	// List returns the conversation between the caller and otherID. The
	// result is the same whichever participant asks.
	List(ctx context.Context, callerID, workspaceID, otherID uuid.UUID) ([]DirectMessageView, error)
	MarkRead(ctx context.Context, callerID, workspaceID, otherID uuid.UUID) (int64, error)
}

type DirectMessageView struct {
	ID          uuid.UUID    `json:"id"`
	WorkspaceID uuid.UUID    `json:"workspace_id"`
	SenderID    uuid.UUID    `json:"sender_id"`
	RecipientID uuid.UUID    `json:"recipient_id"`
	Sender      *models.User `json:"sender,omitempty"`
	Recipient   *models.User `json:"recipient,omitempty"`
	Content     string       `json:"content"`
	Read        bool         `json:"read"`
	CreatedAt   time.Time    `json:"created_at"`
	EditedAt    *time.Time   `json:"edited_at,omitempty"`
	DeletedAt   *time.Time   `json:"deleted_at,omitempty"`
	Deleted     bool         `json:"deleted"`
}

type readReceipt struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	ReaderID    uuid.UUID `json:"reader_id"`
	SenderID    uuid.UUID `json:"sender_id"`
	Count       int64     `json:"count"`
}

type directMessageService struct {
	db        *database.Database
	publisher Publisher
	now       func() time.Time
}

func NewDirectMessageService(db *database.Database, publisher Publisher) DirectMessageService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &directMessageService{db: db, publisher: publisher, now: time.Now}
}

// Send requires both parties to be members of the workspace. Empty content
// is a no-op that returns nil.
func (s *directMessageService) Send(ctx context.Context, callerID, workspaceID, recipientID uuid.UUID, content string) (*DirectMessageView, error) {
	if _, err := workspaceMember(ctx, s.db, workspaceID, callerID); err != nil {
		return nil, err
	}

	_, err := s.db.GetMember(ctx, workspaceID, recipientID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, validationError("recipient is not a member of this workspace")
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	dm := &models.DirectMessage{
		WorkspaceID: workspaceID,
		SenderID:    callerID,
		RecipientID: recipientID,
		Content:     content,
	}
	if err := s.db.SaveDirectMessage(ctx, dm); err != nil {
		return nil, err
	}

	stored, err := s.db.GetDirectMessage(ctx, dm.ID)
	if err != nil {
		return nil, fmt.Errorf("reload direct message: %w", err)
	}

	view := directMessageView(stored)
	s.publisher.Publish(ConversationTopic(workspaceID, callerID, recipientID), EventDirectMessageCreated, view)
	return &view, nil
}

func (s *directMessageService) Edit(ctx context.Context, callerID, messageID uuid.UUID, content string) (*DirectMessageView, error) {
	dm, err := s.ownMessage(ctx, callerID, messageID)
	if err != nil {
		return nil, err
	}
	if dm.IsDeleted() {
		return nil, ErrMessageDeleted
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationError("content is required")
	}

	now := s.now()
	if err := s.db.EditDirectMessage(ctx, dm.ID, content, now); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrMessageDeleted
		}
		return nil, err
	}
	dm.Content = content
	dm.EditedAt = &now

	view := directMessageView(dm)
	s.publisher.Publish(ConversationTopic(dm.WorkspaceID, dm.SenderID, dm.RecipientID), EventDirectMessageUpdated, view)
	return &view, nil
}

func (s *directMessageService) Delete(ctx context.Context, callerID, messageID uuid.UUID) error {
	dm, err := s.ownMessage(ctx, callerID, messageID)
	if err != nil {
		return err
	}
	if dm.IsDeleted() {
		return ErrMessageDeleted
	}

	now := s.now()
	if err := s.db.SoftDeleteDirectMessage(ctx, dm.ID, now); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrMessageDeleted
		}
		return err
	}
	dm.DeletedAt = &now

	slog.InfoContext(ctx, "direct message deleted", "message_id", dm.ID, "workspace_id", dm.WorkspaceID)
	s.publisher.Publish(ConversationTopic(dm.WorkspaceID, dm.SenderID, dm.RecipientID), EventDirectMessageDeleted, directMessageView(dm))
	return nil
}

func (s *directMessageService) List(ctx context.Context, callerID, workspaceID, otherID uuid.UUID) ([]DirectMessageView, error) {
	_, err := workspaceMember(ctx, s.db, workspaceID, callerID)
	if isAccessDenied(err) {
		return []DirectMessageView{}, nil
	}
	if err != nil {
		return nil, err
	}

	dms, err := s.db.GetConversation(ctx, workspaceID, callerID, otherID)
	if err != nil {
		return nil, err
	}

	views := make([]DirectMessageView, 0, len(dms))
	for i := range dms {
		views = append(views, directMessageView(&dms[i]))
	}
	return views, nil
}

// MarkRead flags every message the caller received from otherID as read.
func (s *directMessageService) MarkRead(ctx context.Context, callerID, workspaceID, otherID uuid.UUID) (int64, error) {
	if _, err := workspaceMember(ctx, s.db, workspaceID, callerID); err != nil {
		return 0, err
	}

	n, err := s.db.MarkConversationRead(ctx, workspaceID, otherID, callerID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publisher.Publish(ConversationTopic(workspaceID, callerID, otherID), EventDirectMessagesRead, readReceipt{
			WorkspaceID: workspaceID,
			ReaderID:    callerID,
			SenderID:    otherID,
			Count:       n,
		})
	}
	return n, nil
}

func (s *directMessageService) ownMessage(ctx context.Context, callerID, messageID uuid.UUID) (*models.DirectMessage, error) {
	if callerID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	dm, err := s.db.GetDirectMessage(ctx, messageID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get direct message: %w", err)
	}
	if !dm.Involves(callerID) {
		return nil, ErrNotFound
	}
	if dm.SenderID != callerID {
		return nil, ErrNotAuthorized
	}
	return dm, nil
}

func directMessageView(dm *models.DirectMessage) DirectMessageView {
	v := DirectMessageView{
		ID:          dm.ID,
		WorkspaceID: dm.WorkspaceID,
		SenderID:    dm.SenderID,
		RecipientID: dm.RecipientID,
		Sender:      dm.Sender,
		Recipient:   dm.Recipient,
		Content:     dm.Content,
		Read:        dm.Read,
		CreatedAt:   dm.CreatedAt,
		EditedAt:    dm.EditedAt,
		DeletedAt:   dm.DeletedAt,
		Deleted:     dm.IsDeleted(),
	}
	if v.Deleted {
		v.Content = ""
	}
	return v
}
