package auth

import (
	"context"
	"errors"
	"time"

	"github.com/timewise/timewise/internal/model"
	"github.com/timewise/timewise/internal/store"
)

// Authenticator resolves a session token to the session it names.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Session, error)
}

// SessionAuthenticator looks sessions up in the store and rejects expired ones.
type SessionAuthenticator struct {
	sessions store.Sessions
	now      func() time.Time
}

func NewSessionAuthenticator(sessions store.Sessions) *SessionAuthenticator {
	return &SessionAuthenticator{sessions: sessions, now: time.Now}
}

func (a *SessionAuthenticator) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	sess, err := a.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if sess.Expired(a.now()) {
		_ = a.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}
	return sess, nil
}

const (
	// LocalDevToken is the fixed token accepted in dev mode only.
	LocalDevToken = "tw_local_dev_token"

	DevUserID    = "timewise-dev"
	DevUserEmail = "dev@localhost"
	DevUserName  = "Local Developer"
)

// DevSession is the identity LocalDevToken resolves to.
func DevSession() *model.Session {
	return &model.Session{Token: LocalDevToken, UserID: DevUserID, Username: DevUserName, Email: DevUserEmail}
}

// DevAuthenticator accepts LocalDevToken and defers every other token to next.
type DevAuthenticator struct {
	next Authenticator
}

func NewDevAuthenticator(next Authenticator) *DevAuthenticator {
	return &DevAuthenticator{next: next}
}

func (d *DevAuthenticator) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	if token == LocalDevToken {
		return DevSession(), nil
	}
	if d.next == nil {
		return nil, ErrInvalidToken
	}
	return d.next.Authenticate(ctx, token)
}
