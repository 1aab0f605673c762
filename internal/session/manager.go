// Package session issues and checks the signed access tokens handed out at
// login, and remembers which ones were revoked by logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/ambition_store/internal/errs"
	middleware "github.com/Skotchmaster/ambition_store/pkg/middleware/auth"
)

// Store records revoked token ids until they expire.
type Store interface {
	Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Manager struct {
	Secret []byte
	TTL    time.Duration
	Store  Store
	Now    func() time.Time
}

func NewManager(secret []byte, ttl time.Duration, store Store) *Manager {
	return &Manager{Secret: secret, TTL: ttl, Store: store, Now: time.Now}
}

func (m *Manager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// Issue signs a new access token for the user.
func (m *Manager) Issue(userID uint, email string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.TTL)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

func (m *Manager) ParseToken(ctx context.Context, token string) (middleware.Identity, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return middleware.Identity{}, fmt.Errorf("%w: %v", errs.ErrUnauthorized, err)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		return middleware.Identity{}, fmt.Errorf("%w: malformed claims", errs.ErrUnauthorized)
	}

	revoked, err := m.Store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return middleware.Identity{}, err
	}
	if revoked {
		return middleware.Identity{}, fmt.Errorf("%w: session revoked", errs.ErrUnauthorized)
	}

	return middleware.Identity{
		UserID:    uint(userID),
		Email:     claims.Email,
		SessionID: claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (m *Manager) Revoke(ctx context.Context, id middleware.Identity) error {
	return m.Store.Revoke(ctx, id.SessionID, id.UserID, id.ExpiresAt)
}
