package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/timewise/timewise/internal/auth"
	"github.com/timewise/timewise/internal/model"
	"github.com/timewise/timewise/internal/store"
)

// AccountService handles registration and session lifecycle.
type AccountService struct {
	store store.Store
	ttl   time.Duration
	now   func() time.Time
}

func NewAccountService(s store.Store, ttl time.Duration) *AccountService {
	return &AccountService{store: s, ttl: ttl, now: time.Now}
}

// Register creates an account. Duplicate emails yield model.ErrConflict.
func (s *AccountService) Register(ctx context.Context, email, password, username string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := ValidateRegistration(email, password, username); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.store.Users().Create(ctx, &model.User{
		Email:        email,
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
	})
}

// Login verifies credentials and opens a session. Unknown emails and wrong
// passwords both yield auth.ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := ValidateLogin(email, password); err != nil {
		return nil, err
	}
	u, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, err
	}

	username := u.Username
	if username == "" {
		username = u.Email
	}
	sess := &model.Session{
		Token:     auth.NewToken(),
		UserID:    u.UserID,
		Username:  username,
		Email:     u.Email,
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}
	if err := s.store.Sessions().Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout ends the session named by token. Unknown tokens are ignored.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	return s.store.Sessions().Delete(ctx, token)
}

// PurgeExpired removes sessions past their expiry.
func (s *AccountService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.Sessions().DeleteExpired(ctx, s.now().UTC())
}

// EnsureDevUser creates the local development account if it is missing.
func (s *AccountService) EnsureDevUser(ctx context.Context) error {
	_, err := s.store.Users().Get(ctx, auth.DevUserID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return err
	}
	hash, err := auth.HashPassword(auth.LocalDevToken)
	if err != nil {
		return err
	}
	_, err = s.store.Users().Create(ctx, &model.User{
		UserID:       auth.DevUserID,
		Email:        auth.DevUserEmail,
		Username:     auth.DevUserName,
		PasswordHash: hash,
	})
	if errors.Is(err, model.ErrConflict) {
		return nil
	}
	return err
}
