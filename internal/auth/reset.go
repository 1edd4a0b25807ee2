package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ResetTTL bounds how long a password-reset token stays redeemable.
const ResetTTL = time.Hour

// ResetStore keeps short-lived password-reset tokens in Redis, keyed by the
// token itself so a token can only be redeemed while the key lives.
type ResetStore struct {
	rdb *redis.Client
}

func NewResetStore(rdb *redis.Client) *ResetStore {
	return &ResetStore{rdb: rdb}
}

// Create issues a reset token for userID.
func (s *ResetStore) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.New().String()
	err := s.rdb.Set(ctx, "pwreset:"+token, userID, ResetTTL).Err()
	return token, err
}

// Consume redeems a token and deletes it. Returns "" when the token is
// unknown or expired.
func (s *ResetStore) Consume(ctx context.Context, token string) (string, error) {
	key := "pwreset:" + token
	userID, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return "", err
	}
	return userID, nil
}
