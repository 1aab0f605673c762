package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ambition_store/internal/models"
	"github.com/Skotchmaster/ambition_store/internal/repo"
	pkgdb "github.com/Skotchmaster/ambition_store/pkg/db"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &repo.GormRepo{DB: db}
}

func TestPurger_Run(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.UpsertEmailValidation(ctx, &models.EmailValidation{Email: "old@b.com", Code: "AAAAA", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, r.UpsertEmailValidation(ctx, &models.EmailValidation{Email: "new@b.com", Code: "BBBBB", CreatedAt: now.Add(-time.Minute)}))
	require.NoError(t, r.RevokeSession(ctx, &models.RevokedSession{JTI: "gone", UserID: 1, ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, r.RevokeSession(ctx, &models.RevokedSession{JTI: "live", UserID: 1, ExpiresAt: now.Add(time.Hour)}))

	p := &Purger{Repo: r, CodeTTL: 30 * time.Minute, Now: func() time.Time { return now }}
	res, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, PurgeResult{Codes: 1, Sessions: 1}, res)

	_, err = r.GetEmailValidation(ctx, "new@b.com")
	assert.NoError(t, err)
	revoked, err := r.SessionRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	res, err = p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, PurgeResult{}, res)
}

func TestStart_RejectsBadSpec(t *testing.T) {
	_, err := Start(context.Background(), "not a schedule", &Purger{})
	assert.Error(t, err)

	c, err := Start(context.Background(), "@every 1h", &Purger{})
	require.NoError(t, err)
	<-c.Stop().Done()
}
