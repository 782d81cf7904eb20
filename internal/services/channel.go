package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/thereayou/slack-lite/internal/database"
	"github.com/thereayou/slack-lite/internal/models"
)

type ChannelService interface {
	Create(ctx context.Context, callerID, workspaceID uuid.UUID, in CreateChannelInput) (*models.Channel, error)
	List(ctx context.Context, callerID, workspaceID uuid.UUID) ([]models.Channel, error)
	Get(ctx context.Context, callerID, channelID uuid.UUID) (*ChannelDetail, error)
	Members(ctx context.Context, callerID, channelID uuid.UUID) ([]models.User, error)
	AddMember(ctx context.Context, callerID, channelID, userID uuid.UUID) error
}

type CreateChannelInput struct {
	Name        string
	Description string
	Visibility  models.Visibility
}

type ChannelDetail struct {
	models.Channel
	Creator *models.User  `json:"creator,omitempty"`
	Members []models.User `json:"members"`
}

type channelService struct {
	db        *database.Database
	publisher Publisher
}

func NewChannelService(db *database.Database, publisher Publisher) ChannelService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &channelService{db: db, publisher: publisher}
}

// Create is restricted to workspace admins. The creator's membership is
// recorded on the channel in the same transaction.
func (s *channelService) Create(ctx context.Context, callerID, workspaceID uuid.UUID, in CreateChannelInput) (*models.Channel, error) {
	member, err := workspaceMember(ctx, s.db, workspaceID, callerID)
	if err != nil {
		return nil, err
	}
	if !member.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	visibility := in.Visibility
	switch visibility {
	case "":
		visibility = models.VisibilityPublic
	case models.VisibilityPublic, models.VisibilityPrivate:
	default:
		return nil, validationError("visibility must be public or private")
	}

	channel := &models.Channel{
		WorkspaceID: workspaceID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Visibility:  visibility,
		CreatedBy:   callerID,
	}
	err = s.db.Transaction(ctx, func(tx *database.Database) error {
		if err := tx.CreateChannel(ctx, channel); err != nil {
			return err
		}
		return tx.AddChannelMember(ctx, &models.ChannelMember{
			ChannelID: channel.ID,
			MemberID:  member.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "channel created",
		"channel_id", channel.ID,
		"workspace_id", workspaceID,
		"visibility", visibility,
	)
	s.publisher.Publish(WorkspaceTopic(workspaceID), EventChannelCreated, channel)
	return channel, nil
}

// List returns the workspace channels the caller can see, or an empty list
// for anonymous callers and non-members.
func (s *channelService) List(ctx context.Context, callerID, workspaceID uuid.UUID) ([]models.Channel, error) {
	member, err := workspaceMember(ctx, s.db, workspaceID, callerID)
	if isAccessDenied(err) {
		return []models.Channel{}, nil
	}
	if err != nil {
		return nil, err
	}

	channels, err := s.db.GetWorkspaceChannels(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if member.IsAdmin() {
		if channels == nil {
			channels = []models.Channel{}
		}
		return channels, nil
	}

	granted, err := s.db.GetMemberChannelIDs(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	explicit := make(map[uuid.UUID]bool, len(granted))
	for _, id := range granted {
		explicit[id] = true
	}

	visible := make([]models.Channel, 0, len(channels))
	for _, ch := range channels {
		if explicit[ch.ID] || (ch.IsPublic() && member.Role == models.RoleMember) {
			visible = append(visible, ch)
		}
	}
	return visible, nil
}

func (s *channelService) Get(ctx context.Context, callerID, channelID uuid.UUID) (*ChannelDetail, error) {
	channel, _, err := visibleChannel(ctx, s.db, callerID, channelID)
	if isAccessDenied(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	users, err := s.resolveMembers(ctx, channel)
	if err != nil {
		return nil, err
	}

	creator, err := s.db.GetUser(ctx, channel.CreatedBy)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("get creator: %w", err)
	}

	return &ChannelDetail{Channel: *channel, Creator: creator, Members: users}, nil
}

func (s *channelService) Members(ctx context.Context, callerID, channelID uuid.UUID) ([]models.User, error) {
	channel, _, err := visibleChannel(ctx, s.db, callerID, channelID)
	if isAccessDenied(err) {
		return []models.User{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.resolveMembers(ctx, channel)
}

// AddMember grants a workspace member explicit access to a channel. Adding
// someone who already has a grant is a no-op.
func (s *channelService) AddMember(ctx context.Context, callerID, channelID, userID uuid.UUID) error {
	if callerID == uuid.Nil {
		return ErrNotAuthenticated
	}

	channel, err := s.db.GetChannel(ctx, channelID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get channel: %w", err)
	}

	caller, err := workspaceMember(ctx, s.db, channel.WorkspaceID, callerID)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return ErrNotAuthorized
	}

	target, err := s.db.GetMember(ctx, channel.WorkspaceID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return validationError("user is not a member of this workspace")
	}
	if err != nil {
		return fmt.Errorf("get member: %w", err)
	}

	err = s.db.AddChannelMember(ctx, &models.ChannelMember{ChannelID: channel.ID, MemberID: target.ID})
	if errors.Is(err, database.ErrDuplicate) {
		return nil
	}
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "channel member added", "channel_id", channel.ID, "user_id", userID)
	s.publisher.Publish(ChannelTopic(channel.ID), EventChannelMemberAdded, target)
	return nil
}

// resolveMembers derives who belongs to a channel. Public channels include
// every admin and member of the workspace; explicit grants are added on top.
func (s *channelService) resolveMembers(ctx context.Context, channel *models.Channel) ([]models.User, error) {
	explicit, err := s.db.GetChannelMembers(ctx, channel.ID)
	if err != nil {
		return nil, err
	}

	var members []models.Member
	if channel.IsPublic() {
		all, err := s.db.GetWorkspaceMembers(ctx, channel.WorkspaceID)
		if err != nil {
			return nil, err
		}
		for _, m := range all {
			if m.Role != models.RoleGuest {
				members = append(members, m)
			}
		}
	}
	members = append(members, explicit...)

	seen := make(map[uuid.UUID]bool, len(members))
	users := make([]models.User, 0, len(members))
	for _, m := range members {
		if m.User == nil || seen[m.ID] || m.WorkspaceID != channel.WorkspaceID {
			continue
		}
		seen[m.ID] = true
		users = append(users, *m.User)
	}
	return users, nil
}
