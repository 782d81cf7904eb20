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

type MessageService interface {
	// Send returns nil without storing anything when there is neither text nor files.
	Send(ctx context.Context, callerID, channelID uuid.UUID, in SendMessageInput) (*MessageView, error)
	Edit(ctx context.Context, callerID, messageID uuid.UUID, text string) (*MessageView, error)
	Delete(ctx context.Context, callerID, messageID uuid.UUID) error
	List(ctx context.Context, callerID, channelID uuid.UUID) ([]MessageView, error)
}

type SendMessageInput struct {
	Text  string
	Files []string
}

// MessageView is a message as served to clients. Deleted messages keep their
// identity and timestamps but lose content and attachments.
type MessageView struct {
	ID          uuid.UUID  `json:"id"`
	ChannelID   uuid.UUID  `json:"channel_id"`
	AuthorID    uuid.UUID  `json:"author_id"`
	AuthorName  string     `json:"author_name"`
	AuthorImage string     `json:"author_image,omitempty"`
	Content     string     `json:"content"`
	Type        string     `json:"type"`
	Files       []string   `json:"files"`
	FileURLs    []string   `json:"file_urls"`
	CreatedAt   time.Time  `json:"created_at"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	Deleted     bool       `json:"deleted"`
}

type messageService struct {
	db        *database.Database
	objects   ObjectStore
	publisher Publisher
	now       func() time.Time
}

func NewMessageService(db *database.Database, objects ObjectStore, publisher Publisher) MessageService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &messageService{db: db, objects: objects, publisher: publisher, now: time.Now}
}

func (s *messageService) Send(ctx context.Context, callerID, channelID uuid.UUID, in SendMessageInput) (*MessageView, error) {
	channel, _, err := visibleChannel(ctx, s.db, callerID, channelID)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(in.Text)
	files, err := normalizeStorageIDs(in.Files)
	if err != nil {
		return nil, err
	}
	if text == "" && len(files) == 0 {
		return nil, nil
	}

	message := &models.Message{
		ChannelID: channel.ID,
		AuthorID:  callerID,
		Content:   text,
		Type:      models.MessageTypeText,
		Files:     files,
	}
	if err := s.db.SaveMessage(ctx, message); err != nil {
		return nil, err
	}

	author, err := s.db.GetUser(ctx, callerID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("get author: %w", err)
	}
	message.Author = author

	slog.DebugContext(ctx, "message sent", "message_id", message.ID, "channel_id", channel.ID)

	view := s.view(ctx, message)
	s.publisher.Publish(ChannelTopic(channel.ID), EventMessageCreated, view)
	return &view, nil
}

// Edit replaces the text of a live message. Only the author may edit.
func (s *messageService) Edit(ctx context.Context, callerID, messageID uuid.UUID, text string) (*MessageView, error) {
	message, err := s.ownMessage(ctx, callerID, messageID)
	if err != nil {
		return nil, err
	}
	if message.IsDeleted() {
		return nil, ErrMessageDeleted
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationError("text is required")
	}

	now := s.now()
	if err := s.db.EditMessage(ctx, message.ID, text, now); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrMessageDeleted
		}
		return nil, err
	}
	message.Content = text
	message.EditedAt = &now

	view := s.view(ctx, message)
	s.publisher.Publish(ChannelTopic(message.ChannelID), EventMessageUpdated, view)
	return &view, nil
}

// Delete soft-deletes a message. Deleting twice fails with ErrMessageDeleted.
func (s *messageService) Delete(ctx context.Context, callerID, messageID uuid.UUID) error {
	message, err := s.ownMessage(ctx, callerID, messageID)
	if err != nil {
		return err
	}
	if message.IsDeleted() {
		return ErrMessageDeleted
	}

	now := s.now()
	if err := s.db.SoftDeleteMessage(ctx, message.ID, now); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrMessageDeleted
		}
		return err
	}
	message.DeletedAt = &now

	slog.InfoContext(ctx, "message deleted", "message_id", message.ID, "channel_id", message.ChannelID)
	s.publisher.Publish(ChannelTopic(message.ChannelID), EventMessageDeleted, s.view(ctx, message))
	return nil
}

// List returns the channel history oldest first, or an empty list when the
// caller cannot see the channel.
func (s *messageService) List(ctx context.Context, callerID, channelID uuid.UUID) ([]MessageView, error) {
	_, _, err := visibleChannel(ctx, s.db, callerID, channelID)
	if isAccessDenied(err) {
		return []MessageView{}, nil
	}
	if err != nil {
		return nil, err
	}

	messages, err := s.db.GetChannelMessages(ctx, channelID)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(messages))
	for i := range messages {
		views = append(views, s.view(ctx, &messages[i]))
	}
	return views, nil
}

func (s *messageService) ownMessage(ctx context.Context, callerID, messageID uuid.UUID) (*models.Message, error) {
	if callerID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	message, err := s.db.GetMessage(ctx, messageID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	if message.AuthorID != callerID {
		return nil, ErrNotAuthorized
	}
	return message, nil
}

func (s *messageService) view(ctx context.Context, m *models.Message) MessageView {
	v := MessageView{
		ID:         m.ID,
		ChannelID:  m.ChannelID,
		AuthorID:   m.AuthorID,
		AuthorName: m.Author.DisplayName(),
		Content:    m.Content,
		Type:       m.Type,
		Files:      []string{},
		FileURLs:   []string{},
		CreatedAt:  m.CreatedAt,
		EditedAt:   m.EditedAt,
		DeletedAt:  m.DeletedAt,
		Deleted:    m.IsDeleted(),
	}
	if m.Author != nil {
		v.AuthorImage = m.Author.Image
	}
	if v.Deleted {
		v.Content = ""
		return v
	}

	v.Files = append(v.Files, m.Files...)
	v.FileURLs = resolveFileURLs(ctx, s.objects, m.Files)
	return v
}

// resolveFileURLs presigns a download URL per storage id. The result is
// index-aligned with ids; an id that cannot be resolved gets "".
func resolveFileURLs(ctx context.Context, objects ObjectStore, ids []string) []string {
	urls := make([]string, len(ids))
	if objects == nil {
		return urls
	}
	for i, id := range ids {
		u, err := objects.PresignDownload(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "failed to resolve file url", "storage_id", id, "error", err)
			continue
		}
		urls[i] = u.String()
	}
	return urls
}

func normalizeStorageIDs(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, validationError("invalid storage id %q", raw)
		}
		out = append(out, id.String())
	}
	return out, nil
}
