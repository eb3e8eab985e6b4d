package timeline

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/timewise/timewise/internal/model"
	"github.com/timewise/timewise/internal/store"
)

// Registry keeps one EntryStore per user so the in-memory view outlives a
// single request.
type Registry struct {
	entries store.Entries
	log     zerolog.Logger
	now     func() time.Time

	mu     sync.Mutex
	stores map[string]*EntryStore
	used   map[string]time.Time
}

func NewRegistry(entries store.Entries, log zerolog.Logger) *Registry {
	return &Registry{
		entries: entries,
		log:     log,
		now:     time.Now,
		stores:  map[string]*EntryStore{},
		used:    map[string]time.Time{},
	}
}

// For returns the EntryStore of the session user, refreshed with sess.
// A nil session yields a detached store that refuses every operation.
func (r *Registry) For(sess *model.Session) *EntryStore {
	if sess == nil {
		return New(r.entries, nil, r.log)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.used[sess.UserID] = r.now()
	s, ok := r.stores[sess.UserID]
	if !ok {
		s = New(r.entries, sess, r.log.With().Str("user_id", sess.UserID).Logger())
		r.stores[sess.UserID] = s
		return s
	}
	s.SetSession(sess)
	return s
}

// Forget drops the cached store of userID.
func (r *Registry) Forget(userID string) {
	r.mu.Lock()
	delete(r.stores, userID)
	delete(r.used, userID)
	r.mu.Unlock()
}

// EvictIdle drops every store not used within idle and returns how many were
// dropped. An evicted user gets a fresh store on the next request.
func (r *Registry) EvictIdle(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, at := range r.used {
		if at.Before(cutoff) {
			delete(r.stores, id)
			delete(r.used, id)
			n++
		}
	}
	return n
}

// Len reports how many user stores are cached.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
