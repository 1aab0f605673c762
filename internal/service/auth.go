package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/ambition_store/internal/errs"
	"github.com/Skotchmaster/ambition_store/internal/metrics"
	"github.com/Skotchmaster/ambition_store/internal/models"
	"github.com/Skotchmaster/ambition_store/internal/mykafka"
	"github.com/Skotchmaster/ambition_store/internal/repo"
	"github.com/Skotchmaster/ambition_store/internal/session"
	"github.com/Skotchmaster/ambition_store/internal/transport"
	pkg_hash "github.com/Skotchmaster/ambition_store/pkg/hash"
	"github.com/Skotchmaster/ambition_store/pkg/logging"
	middleware "github.com/Skotchmaster/ambition_store/pkg/middleware/auth"
)

type AuthService struct {
	Repo     *repo.GormRepo
	Email    *EmailService
	Sessions *session.Manager
	Producer mykafka.Publisher
}

type LoginResult struct {
	User        *models.User
	AccessToken string
	AccessExp   time.Time
}

// Register creates the user only when the signup code for that email is
// consumed in the same transaction.
func (s *AuthService) Register(ctx context.Context, req transport.SignupRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	taken, err := s.Repo.EmailRegistered(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: email already registered", errs.ErrConflict)
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
	}

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := s.Email.consume(ctx, tx, req.Email, req.ValidationCode); err != nil {
			if errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrUnauthorized) {
				return fmt.Errorf("%w: email verification failed: %v", errs.ErrUnauthorized, err)
			}
			return err
		}
		if err := tx.CreateUser(ctx, &user); err != nil {
			if repo.IsDuplicate(err) {
				return fmt.Errorf("%w: email already registered", errs.ErrConflict)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordSignup()
	mykafka.Publish(ctx, s.Producer, mykafka.TopicUserEvents, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})
	l.Info("register_success", "user_id", user.ID)
	return &user, nil
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", errs.ErrUnauthorized)
		}
		return nil, err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid email or password", errs.ErrUnauthorized)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, exp, err := s.Sessions.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	mykafka.Publish(ctx, s.Producer, mykafka.TopicUserEvents, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})
	return &LoginResult{User: user, AccessToken: token, AccessExp: exp}, nil
}

func (s *AuthService) Logout(ctx context.Context, id middleware.Identity) error {
	if err := s.Sessions.Revoke(ctx, id); err != nil {
		return err
	}
	mykafka.Publish(ctx, s.Producer, mykafka.TopicUserEvents, strconv.FormatUint(uint64(id.UserID), 10), map[string]any{
		"type":   "user_logged_out",
		"userID": id.UserID,
	})
	return nil
}
