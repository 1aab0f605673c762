package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/ambition_store/internal/models"
	"github.com/Skotchmaster/ambition_store/internal/repo"
)

// GormStore keeps revoked sessions in the revoked_sessions table.
type GormStore struct {
	Repo *repo.GormRepo
}

func (s *GormStore) Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) error {
	return s.Repo.RevokeSession(ctx, &models.RevokedSession{JTI: jti, UserID: userID, ExpiresAt: expiresAt.UTC()})
}

func (s *GormStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.Repo.SessionRevoked(ctx, jti)
}

const revokedKeyPrefix = "session:revoked:"

// RedisStore keeps one key per revoked session; the key's TTL ends when the
// token would have expired, so nothing needs purging.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	_, err := s.client.SetNX(ctx, revokedKeyPrefix+jti, userID, ttl).Result()
	return err
}

func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
