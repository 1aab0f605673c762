package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/Skotchmaster/ambition_store/internal/errs"
	"github.com/Skotchmaster/ambition_store/internal/mailer"
	"github.com/Skotchmaster/ambition_store/internal/metrics"
	"github.com/Skotchmaster/ambition_store/internal/models"
	"github.com/Skotchmaster/ambition_store/internal/repo"
	"github.com/Skotchmaster/ambition_store/pkg/logging"
)

const (
	codeLength     = 5
	DefaultCodeTTL = 30 * time.Minute

	codeSubject = "Ambition store verification code"
)

type EmailService struct {
	Repo   *repo.GormRepo
	Mailer mailer.Mailer
	TTL    time.Duration
	Now    func() time.Time
	Codes  func() (string, error)
}

// GenerateCode returns codeLength uppercase letters A-Z.
func GenerateCode() (string, error) {
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(26))
		if err != nil {
			return "", err
		}
		buf[i] = byte('A' + n.Int64())
	}
	return string(buf), nil
}

func (s *EmailService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *EmailService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultCodeTTL
	}
	return s.TTL
}

// Issue stores a fresh code for the address, replacing any earlier one, and
// mails it. A delivery failure is logged; the code stays valid.
func (s *EmailService) Issue(ctx context.Context, email string) (*models.EmailValidation, error) {
	l := logging.FromContext(ctx).With("svc", "email.issue")

	gen := s.Codes
	if gen == nil {
		gen = GenerateCode
	}
	code, err := gen()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	ev := &models.EmailValidation{Email: email, Code: code, CreatedAt: s.now()}
	if err := s.Repo.UpsertEmailValidation(ctx, ev); err != nil {
		return nil, err
	}
	metrics.RecordEmailCode()

	if s.Mailer != nil {
		body := fmt.Sprintf("Your verification code is %s.", code)
		if err := s.Mailer.Send(ctx, email, codeSubject, body); err != nil {
			l.Warn("email_send_failed", "reason", "mail delivery failed", "error", err)
		}
	}
	return ev, nil
}

// VerifyAndConsume deletes the live code for email when code matches it.
// No live code (never issued, expired or already spent) is errs.ErrNotFound;
// a live code that differs is errs.ErrUnauthorized.
func (s *EmailService) VerifyAndConsume(ctx context.Context, email, code string) error {
	return s.consume(ctx, s.Repo, email, code)
}

func (s *EmailService) consume(ctx context.Context, r *repo.GormRepo, email, code string) error {
	if email == "" {
		return fmt.Errorf("%w: verification code", errs.ErrNotFound)
	}
	notBefore := s.now().Add(-s.ttl())
	if code != "" {
		ok, err := r.ConsumeEmailValidation(ctx, email, code, notBefore)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	ev, err := r.GetEmailValidation(ctx, email)
	if err != nil {
		return notFound(err, "verification code")
	}
	if ev.CreatedAt.Before(notBefore) {
		return fmt.Errorf("%w: verification code expired", errs.ErrNotFound)
	}
	return fmt.Errorf("%w: verification code mismatch", errs.ErrUnauthorized)
}
