package services

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// TokenRevoker remembers logged-out tokens until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type PresenceStore interface {
	Touch(ctx context.Context, userID uuid.UUID, at time.Time) error
	LastSeen(ctx context.Context, userID uuid.UUID) (time.Time, bool, error)
	LastSeenMany(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]time.Time, error)
}

// ObjectStore presigns URLs for objects addressed by storage id.
type ObjectStore interface {
	PresignUpload(ctx context.Context, key string) (*url.URL, error)
	PresignDownload(ctx context.Context, key string) (*url.URL, error)
	Expiry() time.Duration
}

type Mailer interface {
	SendWorkspaceInvite(to, workspaceName, inviterName, inviteLink string) error
}

// Publisher fans an event out to the subscribers of a topic.
type Publisher interface {
	Publish(topic, event string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, any) {}
