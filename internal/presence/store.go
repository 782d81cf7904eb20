// Package presence tracks when users were last seen. Online status is always
// derived from the last-seen time and a freshness window.
package presence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const DefaultKey = "presence:last_seen"

type Store struct {
	client *redis.Client
	key    string
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client, key: DefaultKey}
}

// Touch records at as the user's last-seen time.
func (s *Store) Touch(ctx context.Context, userID uuid.UUID, at time.Time) error {
	if err := s.client.HSet(ctx, s.key, userID.String(), at.UnixMilli()).Err(); err != nil {
		return fmt.Errorf("touch presence: %w", err)
	}
	return nil
}

// LastSeen reports the user's last-seen time and false if the user was never seen.
func (s *Store) LastSeen(ctx context.Context, userID uuid.UUID) (time.Time, bool, error) {
	raw, err := s.client.HGet(ctx, s.key, userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get presence: %w", err)
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse presence: %w", err)
	}
	return time.UnixMilli(ms), true, nil
}

// LastSeenMany looks up several users at once. Users never seen are omitted.
func (s *Store) LastSeenMany(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]time.Time, error) {
	out := make(map[uuid.UUID]time.Time, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	fields := make([]string, len(userIDs))
	for i, id := range userIDs {
		fields[i] = id.String()
	}

	values, err := s.client.HMGet(ctx, s.key, fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("get presence: %w", err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		out[userIDs[i]] = time.UnixMilli(ms)
	}
	return out, nil
}

// IsOnline reports whether lastSeen falls within window of now.
func IsOnline(lastSeen, now time.Time, window time.Duration) bool {
	if lastSeen.IsZero() {
		return false
	}
	return now.Sub(lastSeen) < window
}
