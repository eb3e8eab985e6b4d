package store

import (
	"context"
	"time"

	"github.com/timewise/timewise/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite, memstore).
//
// Every entry operation is scoped by user id; an entry that exists under a
// different user is reported as model.ErrNotFound.
type Store interface {
	Users() Users
	Sessions() Sessions
	Entries() Entries
}

type Users interface {
	// Create inserts a user. A duplicate email yields model.ErrConflict.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type Sessions interface {
	Create(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, token string) (*model.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Entries interface {
	// Create assigns a new id and timestamps and returns the stored entry.
	Create(ctx context.Context, e *model.TimelineEntry) (*model.TimelineEntry, error)
	Get(ctx context.Context, userID, entryID string) (*model.TimelineEntry, error)
	// List returns the user's entries ordered by date descending, newest
	// creation first within a day.
	List(ctx context.Context, req model.ListEntriesRequest) ([]*model.TimelineEntry, error)
	// Update replaces the mutable fields of an existing entry; id, owner and
	// creation time are preserved.
	Update(ctx context.Context, e *model.TimelineEntry) (*model.TimelineEntry, error)
	Delete(ctx context.Context, userID, entryID string) error
}
