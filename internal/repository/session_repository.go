package repository

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "escape:session:"

// SessionRepository keeps issued bearer tokens in Redis so they can be
// revoked before they expire.
type SessionRepository struct {
	Client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{Client: client}
}

func (r *SessionRepository) Save(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	return r.Client.Set(ctx, sessionKeyPrefix+tokenID, userID, ttl).Err()
}

// Get returns the owning user id, or "" when the session is unknown or expired.
func (r *SessionRepository) Get(ctx context.Context, tokenID string) (string, error) {
	userID, err := r.Client.Get(ctx, sessionKeyPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return userID, err
}

func (r *SessionRepository) Delete(ctx context.Context, tokenID string) error {
	return r.Client.Del(ctx, sessionKeyPrefix+tokenID).Err()
}
