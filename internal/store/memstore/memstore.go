// Package memstore is an in-process store.Store used in tests and the memory driver.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/timewise/timewise/internal/model"
	"github.com/timewise/timewise/internal/store"
)

type entryKey struct{ userID, entryID string }

// Store keeps all records in maps guarded by a single mutex.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]model.User
	emails   map[string]string
	sessions map[string]model.Session
	entries  map[entryKey]model.TimelineEntry
}

func New() *Store {
	return &Store{
		now:      time.Now,
		users:    map[string]model.User{},
		emails:   map[string]string{},
		sessions: map[string]model.Session{},
		entries:  map[entryKey]model.TimelineEntry{},
	}
}

func (s *Store) Users() store.Users       { return users{s} }
func (s *Store) Sessions() store.Sessions { return sessions{s} }
func (s *Store) Entries() store.Entries   { return entries{s} }

// HealthPing always succeeds.
func (s *Store) HealthPing(context.Context) error { return nil }

type users struct{ s *Store }

func (u users) Create(_ context.Context, m *model.User) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.emails[m.Email]; ok {
		return nil, fmt.Errorf("%w: email already registered", model.ErrConflict)
	}
	out := *m
	if out.UserID == "" {
		out.UserID = uuid.New().String()
	}
	out.CreationTime = u.s.now().UTC()
	u.s.users[out.UserID] = out
	u.s.emails[out.Email] = out.UserID
	return &out, nil
}

func (u users) Get(_ context.Context, userID string) (*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	m, ok := u.s.users[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &m, nil
}

func (u users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u.s.mu.RLock()
	id, ok := u.s.emails[email]
	u.s.mu.RUnlock()
	if !ok {
		return nil, model.ErrNotFound
	}
	return u.Get(ctx, id)
}

type sessions struct{ s *Store }

func (ss sessions) Create(_ context.Context, m *model.Session) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	if _, ok := ss.s.sessions[m.Token]; ok {
		return fmt.Errorf("%w: session token reused", model.ErrConflict)
	}
	ss.s.sessions[m.Token] = *m
	return nil
}

func (ss sessions) Get(_ context.Context, token string) (*model.Session, error) {
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()
	m, ok := ss.s.sessions[token]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &m, nil
}

func (ss sessions) Delete(_ context.Context, token string) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	delete(ss.s.sessions, token)
	return nil
}

func (ss sessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	var n int64
	for tok, m := range ss.s.sessions {
		if m.Expired(now) {
			delete(ss.s.sessions, tok)
			n++
		}
	}
	return n, nil
}

type entries struct{ s *Store }

func (r entries) Create(_ context.Context, e *model.TimelineEntry) (*model.TimelineEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *e
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	k := entryKey{out.UserID, out.ID}
	if _, ok := r.s.entries[k]; ok {
		return nil, fmt.Errorf("%w: entry %s exists", model.ErrConflict, out.ID)
	}
	now := r.s.now().UTC()
	out.CreationTime, out.UpdateTime = now, now
	r.s.entries[k] = out
	return &out, nil
}

func (r entries) Get(_ context.Context, userID, entryID string) (*model.TimelineEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.entries[entryKey{userID, entryID}]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &e, nil
}

func (r entries) List(_ context.Context, req model.ListEntriesRequest) ([]*model.TimelineEntry, error) {
	r.s.mu.RLock()
	var out []*model.TimelineEntry
	for k, e := range r.s.entries {
		if k.userID != req.UserID {
			continue
		}
		if !req.From.IsZero() && e.Date.Before(req.From) {
			continue
		}
		if !req.To.IsZero() && e.Date.After(req.To) {
			continue
		}
		e := e
		out = append(out, &e)
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreationTime.Equal(b.CreationTime) {
			return a.CreationTime.After(b.CreationTime)
		}
		return a.ID > b.ID
	})
	return out, nil
}

func (r entries) Update(_ context.Context, e *model.TimelineEntry) (*model.TimelineEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := entryKey{e.UserID, e.ID}
	cur, ok := r.s.entries[k]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := *e
	out.CreationTime = cur.CreationTime
	out.UpdateTime = r.s.now().UTC()
	r.s.entries[k] = out
	return &out, nil
}

func (r entries) Delete(_ context.Context, userID, entryID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := entryKey{userID, entryID}
	if _, ok := r.s.entries[k]; !ok {
		return model.ErrNotFound
	}
	delete(r.s.entries, k)
	return nil
}
