package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ambition_store/internal/errs"
	"github.com/Skotchmaster/ambition_store/internal/repo"
	pkgdb "github.com/Skotchmaster/ambition_store/pkg/db"
)

func newGormStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &GormStore{Repo: &repo.GormRepo{DB: db}}
}

func TestManager_IssueParseRevoke(t *testing.T) {
	ctx := context.Background()
	m := NewManager([]byte("test-secret"), 15*time.Minute, newGormStore(t))

	token, exp, err := m.Issue(42, "a@b.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	id, err := m.ParseToken(ctx, token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, id.UserID)
	assert.Equal(t, "a@b.com", id.Email)
	assert.NotEmpty(t, id.SessionID)

	require.NoError(t, m.Revoke(ctx, id))
	_, err = m.ParseToken(ctx, token)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestManager_RejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	store := newGormStore(t)
	m := NewManager([]byte("test-secret"), time.Minute, store)

	other := NewManager([]byte("other-secret"), time.Minute, store)
	forged, _, err := other.Issue(1, "a@b.com")
	require.NoError(t, err)
	_, err = m.ParseToken(ctx, forged)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = m.ParseToken(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	issuedAt := time.Now().Add(-time.Hour)
	m.Now = func() time.Time { return issuedAt }
	expired, _, err := m.Issue(1, "a@b.com")
	require.NoError(t, err)
	m.Now = time.Now
	_, err = m.ParseToken(ctx, expired)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(client)
	jti := "test-" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { client.Del(ctx, revokedKeyPrefix+jti) })

	revoked, err := store.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, jti, 1, time.Now().Add(time.Minute)))
	revoked, err = store.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := client.TTL(ctx, revokedKeyPrefix+jti).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Revoke(ctx, "already-expired", 1, time.Now().Add(-time.Minute)))
	revoked, err = store.IsRevoked(ctx, "already-expired")
	require.NoError(t, err)
	assert.False(t, revoked)
}
