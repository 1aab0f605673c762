package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ambition_store/internal/errs"
)

func TestGenerateCode_FiveUppercaseLetters(t *testing.T) {
	t.Parallel()
	re := regexp.MustCompile(`^[A-Z]{5}$`)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}
}

func TestEmailService_IssueStoresAndMails(t *testing.T) {
	s := newServices(t, "ABCDE", "FGHIJ")
	ctx := context.Background()

	ev, err := s.Email.Issue(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "ABCDE", ev.Code)

	require.Len(t, s.Mailer.sent, 1)
	assert.Equal(t, "a@b.com", s.Mailer.sent[0].To)
	assert.Contains(t, s.Mailer.sent[0].Body, "ABCDE")

	s.Clock.Advance(time.Minute)
	_, err = s.Email.Issue(ctx, "a@b.com")
	require.NoError(t, err)

	stored, err := s.Repo.GetEmailValidation(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "FGHIJ", stored.Code)
	assert.True(t, stored.CreatedAt.Equal(s.Clock.Now()))

	err = s.Email.VerifyAndConsume(ctx, "a@b.com", "ABCDE")
	assert.ErrorIs(t, err, errs.ErrUnauthorized, "replaced code must not verify")
}

func TestEmailService_MailFailureStillIssues(t *testing.T) {
	s := newServices(t, "ABCDE")
	s.Mailer.err = errors.New("smtp down")

	_, err := s.Email.Issue(context.Background(), "a@b.com")
	require.NoError(t, err)

	require.NoError(t, s.Email.VerifyAndConsume(context.Background(), "a@b.com", "ABCDE"))
}

func TestEmailService_VerifyAndConsume(t *testing.T) {
	s := newServices(t, "ABCDE")
	ctx := context.Background()
	_, err := s.Email.Issue(ctx, "a@b.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		email string
		code  string
		kind  error
	}{
		{"unknown email", "x@b.com", "ABCDE", errs.ErrNotFound},
		{"empty email", "", "ABCDE", errs.ErrNotFound},
		{"wrong code", "a@b.com", "ABCDF", errs.ErrUnauthorized},
		{"lowercase code", "a@b.com", "abcde", errs.ErrUnauthorized},
		{"empty code", "a@b.com", "", errs.ErrUnauthorized},
	}
	for _, tt := range tests {
		err := s.Email.VerifyAndConsume(ctx, tt.email, tt.code)
		assert.ErrorIs(t, err, tt.kind, tt.name)
	}

	require.NoError(t, s.Email.VerifyAndConsume(ctx, "a@b.com", "ABCDE"))

	err = s.Email.VerifyAndConsume(ctx, "a@b.com", "ABCDE")
	assert.ErrorIs(t, err, errs.ErrNotFound, "codes are single use")
}

func TestEmailService_ExpiredCode(t *testing.T) {
	s := newServices(t, "ABCDE")
	ctx := context.Background()
	_, err := s.Email.Issue(ctx, "a@b.com")
	require.NoError(t, err)

	s.Clock.Advance(31 * time.Minute)
	err = s.Email.VerifyAndConsume(ctx, "a@b.com", "ABCDE")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
