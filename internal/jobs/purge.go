package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Skotchmaster/ambition_store/internal/metrics"
	"github.com/Skotchmaster/ambition_store/internal/repo"
	"github.com/Skotchmaster/ambition_store/pkg/logging"
)

// Purger removes signup codes past their lifetime and revocation records
// whose tokens have expired.
type Purger struct {
	Repo    *repo.GormRepo
	CodeTTL time.Duration
	Now     func() time.Time
}

type PurgeResult struct {
	Codes    int64
	Sessions int64
}

func (p *Purger) now() time.Time {
	if p.Now == nil {
		return time.Now().UTC()
	}
	return p.Now().UTC()
}

func (p *Purger) Run(ctx context.Context) (PurgeResult, error) {
	l := logging.FromContext(ctx).With("job", "purge")
	now := p.now()

	codes, err := p.Repo.PurgeEmailValidations(ctx, now.Add(-p.CodeTTL))
	if err != nil {
		l.Error("purge_error", "table", "email_validations", "error", err)
		return PurgeResult{}, err
	}
	metrics.RecordPurge("email_validations", codes)

	sessions, err := p.Repo.PurgeRevokedSessions(ctx, now)
	if err != nil {
		l.Error("purge_error", "table", "revoked_sessions", "error", err)
		return PurgeResult{Codes: codes}, err
	}
	metrics.RecordPurge("revoked_sessions", sessions)

	l.Info("purge_done", "codes", codes, "sessions", sessions)
	return PurgeResult{Codes: codes, Sessions: sessions}, nil
}

// Start schedules the purger on a cron spec ("@every 10m", "0 * * * *").
// The returned scheduler is already running; Stop it on shutdown.
func Start(ctx context.Context, spec string, p *Purger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		_, _ = p.Run(runCtx)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule purge %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
