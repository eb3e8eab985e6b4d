// Package timeline keeps a user's in-memory view of their timesheet entries
// in step with the persistence layer.
package timeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/timewise/timewise/internal/metrics"
	"github.com/timewise/timewise/internal/model"
	"github.com/timewise/timewise/internal/store"
)

// Result is the outcome of an EntryStore operation. Err is nil on success and
// otherwise matches one of model.ErrValidation, model.ErrAuthRequired,
// model.ErrNotFound or a store error.
type Result struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Entry   *model.TimelineEntry `json:"entry,omitempty"`
	Err     error                `json:"-"`
}

func ok(msg string, e *model.TimelineEntry) Result {
	return Result{Success: true, Message: msg, Entry: e}
}

func fail(msg string, err error) Result {
	return Result{Message: msg, Err: err}
}

const msgAuthRequired = "Authentication required."

// EntryStore holds the ordered entries of the session user. Mutations go to
// the store first and are followed by a full reload; the in-memory list is
// only ever replaced wholesale.
type EntryStore struct {
	entries store.Entries
	log     zerolog.Logger

	mu      sync.RWMutex
	session *model.Session
	list    []model.TimelineEntry

	inflight atomic.Int32
}

// New returns an EntryStore acting for sess. A nil session means no current user.
func New(entries store.Entries, sess *model.Session, log zerolog.Logger) *EntryStore {
	return &EntryStore{entries: entries, session: sess, log: log}
}

// SetSession switches the identity the store acts as.
func (s *EntryStore) SetSession(sess *model.Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
}

func (s *EntryStore) currentSession() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Entries returns a copy of the current list, newest date first.
func (s *EntryStore) Entries() []model.TimelineEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.TimelineEntry, len(s.list))
	copy(out, s.list)
	return out
}

// Loading reports whether a Load is in flight.
func (s *EntryStore) Loading() bool { return s.inflight.Load() > 0 }

func (s *EntryStore) replace(list []model.TimelineEntry) {
	s.mu.Lock()
	s.list = list
	s.mu.Unlock()
}

// Load fetches every entry of the session user and replaces the local list.
// Any failure leaves the list empty.
func (s *EntryStore) Load(ctx context.Context) Result {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	sess := s.currentSession()
	if sess == nil {
		s.replace(nil)
		record("load", model.ErrAuthRequired)
		return fail(msgAuthRequired, model.ErrAuthRequired)
	}

	start := time.Now()
	fetched, err := s.entries.List(ctx, model.ListEntriesRequest{UserID: sess.UserID})
	metrics.EntryLoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.log.Error().Stack().Err(err).Str("user_id", sess.UserID).Msg("load entries failed")
		s.replace(nil)
		record("load", err)
		return fail("Failed to load timeline entries.", err)
	}

	list := make([]model.TimelineEntry, 0, len(fetched))
	for _, e := range fetched {
		list = append(list, *e)
	}
	s.replace(list)
	record("load", nil)
	return ok("", nil)
}

// Save validates draft and then updates the entry editingID in place, or
// creates a new entry when editingID is empty or unknown. A successful save
// is followed by a reload.
func (s *EntryStore) Save(ctx context.Context, draft model.EntryDraft, editingID string) Result {
	sess := s.currentSession()
	if sess == nil {
		record("save", model.ErrAuthRequired)
		return fail(msgAuthRequired, model.ErrAuthRequired)
	}
	if err := ValidateDraft(draft); err != nil {
		record("save", err)
		return fail(err.Error(), err)
	}

	var existing *model.TimelineEntry
	if editingID != "" {
		cur, err := s.entries.Get(ctx, sess.UserID, editingID)
		switch {
		case err == nil:
			existing = cur
		case errors.Is(err, model.ErrNotFound):
			s.log.Debug().Str("entry_id", editingID).Msg("edited entry not found; creating new entry")
		default:
			s.log.Error().Stack().Err(err).Str("entry_id", editingID).Msg("lookup of edited entry failed")
			record("save", err)
			return fail("Failed to save timeline entry.", err)
		}
	}

	var (
		saved *model.TimelineEntry
		err   error
		msg   string
	)
	if existing != nil {
		next := *existing
		draft.Apply(&next)
		saved, err = s.entries.Update(ctx, &next)
		msg = "Your timeline entry has been successfully updated."
	} else {
		next := model.TimelineEntry{UserID: sess.UserID, UserName: sess.Username}
		draft.Apply(&next)
		saved, err = s.entries.Create(ctx, &next)
		msg = "Your timeline entry has been successfully added."
	}
	if err != nil {
		s.log.Error().Stack().Err(err).Str("user_id", sess.UserID).Msg("save entry failed")
		record("save", err)
		return fail("Failed to save timeline entry.", err)
	}
	record("save", nil)

	if r := s.Load(ctx); !r.Success {
		s.log.Warn().Err(r.Err).Str("entry_id", saved.ID).Msg("reload after save failed")
	}
	return ok(msg, saved)
}

// Delete removes entry id from the session user's collection and reloads.
func (s *EntryStore) Delete(ctx context.Context, id string) Result {
	sess := s.currentSession()
	if sess == nil {
		record("delete", model.ErrAuthRequired)
		return fail(msgAuthRequired, model.ErrAuthRequired)
	}
	if id == "" {
		err := &DraftError{Problems: []string{"Entry ID is required."}}
		record("delete", err)
		return fail(err.Error(), err)
	}

	if err := s.entries.Delete(ctx, sess.UserID, id); err != nil {
		msg := "Failed to delete timeline entry."
		if errors.Is(err, model.ErrNotFound) {
			msg = "Timeline entry not found."
		} else {
			s.log.Error().Stack().Err(err).Str("entry_id", id).Msg("delete entry failed")
		}
		record("delete", err)
		return fail(msg, err)
	}
	record("delete", nil)

	if r := s.Load(ctx); !r.Success {
		s.log.Warn().Err(r.Err).Str("entry_id", id).Msg("reload after delete failed")
	}
	return ok("The timeline entry has been deleted.", nil)
}

func record(op string, err error) {
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EntryOperations.WithLabelValues(op, result).Inc()
}
