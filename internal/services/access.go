package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/thereayou/slack-lite/internal/database"
	"github.com/thereayou/slack-lite/internal/models"
)

// workspaceMember returns userID's membership in workspaceID. Anonymous
// callers get ErrNotAuthenticated and non-members ErrNotAuthorized.
func workspaceMember(ctx context.Context, db *database.Database, workspaceID, userID uuid.UUID) (*models.Member, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	member, err := db.GetMember(ctx, workspaceID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return member, nil
}

// visibleChannel loads a channel and the caller's membership, failing unless
// the caller can see the channel.
func visibleChannel(ctx context.Context, db *database.Database, callerID, channelID uuid.UUID) (*models.Channel, *models.Member, error) {
	if callerID == uuid.Nil {
		return nil, nil, ErrNotAuthenticated
	}

	channel, err := db.GetChannel(ctx, channelID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get channel: %w", err)
	}

	member, err := workspaceMember(ctx, db, channel.WorkspaceID, callerID)
	if err != nil {
		return nil, nil, err
	}

	ok, err := canViewChannel(ctx, db, channel, member)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrNotAuthorized
	}
	return channel, member, nil
}

// canViewChannel: admins see every channel, members see public channels, and
// anything else needs an explicit channel_members row.
func canViewChannel(ctx context.Context, db *database.Database, channel *models.Channel, member *models.Member) (bool, error) {
	if member.IsAdmin() {
		return true, nil
	}
	if channel.IsPublic() && member.Role == models.RoleMember {
		return true, nil
	}
	ok, err := db.IsChannelMember(ctx, channel.ID, member.ID)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func isAccessDenied(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrNotAuthorized) ||
		errors.Is(err, ErrNotFound)
}
