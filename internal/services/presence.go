package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/slack-lite/internal/database"
	"github.com/thereayou/slack-lite/internal/models"
	"github.com/thereayou/slack-lite/internal/presence"
)

type PresenceService interface {
	Heartbeat(ctx context.Context, callerID uuid.UUID) error
	// LastSeen returns nil for anonymous callers and users never seen.
	LastSeen(ctx context.Context, callerID uuid.UUID) (*time.Time, error)
	User(ctx context.Context, callerID, userID uuid.UUID) (*UserPresence, error)
	// Workspace lists the presence of every member of a workspace the caller
	// belongs to.
	Workspace(ctx context.Context, callerID, workspaceID uuid.UUID) ([]UserPresence, error)
	// KeepAlive heartbeats for userID until ctx is cancelled.
	KeepAlive(ctx context.Context, userID uuid.UUID)
}

type UserPresence struct {
	models.User
	LastSeen *time.Time `json:"last_seen"`
	Online   bool       `json:"online"`
}

type presenceService struct {
	db       *database.Database
	store    PresenceStore
	window   time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewPresenceService(db *database.Database, store PresenceStore, window, interval time.Duration) PresenceService {
	return &presenceService{
		db:       db,
		store:    store,
		window:   window,
		interval: interval,
		now:      time.Now,
	}
}

func (s *presenceService) Heartbeat(ctx context.Context, callerID uuid.UUID) error {
	if callerID == uuid.Nil {
		return ErrNotAuthenticated
	}
	return s.store.Touch(ctx, callerID, s.now())
}

func (s *presenceService) LastSeen(ctx context.Context, callerID uuid.UUID) (*time.Time, error) {
	if callerID == uuid.Nil {
		return nil, nil
	}
	at, ok, err := s.store.LastSeen(ctx, callerID)
	if err != nil || !ok {
		return nil, err
	}
	return &at, nil
}

// User returns a user record with its derived online flag. It returns nil
// for anonymous callers and unknown users.
func (s *presenceService) User(ctx context.Context, callerID, userID uuid.UUID) (*UserPresence, error) {
	if callerID == uuid.Nil {
		return nil, nil
	}

	user, err := s.db.GetUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	out := &UserPresence{User: *user}
	at, ok, err := s.store.LastSeen(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ok {
		out.LastSeen = &at
		out.Online = presence.IsOnline(at, s.now(), s.window)
	}
	return out, nil
}

func (s *presenceService) Workspace(ctx context.Context, callerID, workspaceID uuid.UUID) ([]UserPresence, error) {
	_, err := workspaceMember(ctx, s.db, workspaceID, callerID)
	if isAccessDenied(err) {
		return []UserPresence{}, nil
	}
	if err != nil {
		return nil, err
	}

	members, err := s.db.GetWorkspaceMembers(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}

	seen, err := s.store.LastSeenMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]UserPresence, 0, len(members))
	for _, m := range members {
		if m.User == nil {
			continue
		}
		p := UserPresence{User: *m.User}
		if at, ok := seen[m.UserID]; ok {
			p.LastSeen = &at
			p.Online = presence.IsOnline(at, now, s.window)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *presenceService) KeepAlive(ctx context.Context, userID uuid.UUID) {
	presence.Heartbeat(ctx, s.interval, func(ctx context.Context) error {
		return s.store.Touch(ctx, userID, s.now())
	})
}
