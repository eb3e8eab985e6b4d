package timeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timewise/timewise/internal/model"
	"github.com/timewise/timewise/internal/store"
	"github.com/timewise/timewise/internal/store/memstore"
)

var errUnavailable = errors.New("store unavailable")

// flakyEntries wraps a real Entries and fails selected operations on demand.
type flakyEntries struct {
	store.Entries
	mu       sync.Mutex
	failList bool
	failMut  bool
	calls    int
}

func (f *flakyEntries) setFailList(v bool) { f.mu.Lock(); f.failList = v; f.mu.Unlock() }
func (f *flakyEntries) setFailMut(v bool)  { f.mu.Lock(); f.failMut = v; f.mu.Unlock() }

func (f *flakyEntries) count() int { f.mu.Lock(); defer f.mu.Unlock(); return f.calls }

func (f *flakyEntries) bump() (list, mut bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.failList, f.failMut
}

func (f *flakyEntries) List(ctx context.Context, req model.ListEntriesRequest) ([]*model.TimelineEntry, error) {
	if fl, _ := f.bump(); fl {
		return nil, errUnavailable
	}
	return f.Entries.List(ctx, req)
}

func (f *flakyEntries) Create(ctx context.Context, e *model.TimelineEntry) (*model.TimelineEntry, error) {
	if _, fm := f.bump(); fm {
		return nil, errUnavailable
	}
	return f.Entries.Create(ctx, e)
}

func (f *flakyEntries) Update(ctx context.Context, e *model.TimelineEntry) (*model.TimelineEntry, error) {
	if _, fm := f.bump(); fm {
		return nil, errUnavailable
	}
	return f.Entries.Update(ctx, e)
}

func (f *flakyEntries) Delete(ctx context.Context, userID, entryID string) error {
	if _, fm := f.bump(); fm {
		return errUnavailable
	}
	return f.Entries.Delete(ctx, userID, entryID)
}

func (f *flakyEntries) Get(ctx context.Context, userID, entryID string) (*model.TimelineEntry, error) {
	f.bump()
	return f.Entries.Get(ctx, userID, entryID)
}

var alice = &model.Session{UserID: "u-alice", Username: "alice", Email: "alice@example.test"}

func newTestStore(t *testing.T) (*EntryStore, *flakyEntries) {
	t.Helper()
	fe := &flakyEntries{Entries: memstore.New().Entries()}
	return New(fe, alice, zerolog.Nop()), fe
}

func draftOn(d model.Date, desc string) model.EntryDraft {
	return model.EntryDraft{
		Date:        d,
		Client:      "client-1",
		Task:        "task-1",
		Description: desc,
		TimeSpent:   "1:30",
	}
}

func TestSave_CreatesAndReloads(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	r := s.Save(ctx, draftOn(model.NewDate(2024, time.March, 1), "first"), "")
	require.True(t, r.Success, r.Message)
	require.NotNil(t, r.Entry)
	assert.NotEmpty(t, r.Entry.ID)
	assert.Equal(t, "u-alice", r.Entry.UserID)
	assert.Equal(t, "alice", r.Entry.UserName)

	r = s.Save(ctx, draftOn(model.NewDate(2024, time.March, 6), "second"), "")
	require.True(t, r.Success)

	list := s.Entries()
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Description, "newest date first")
	assert.Equal(t, "first", list[1].Description)
}

func TestSave_InvalidTimeSpentLeavesListUnchanged(t *testing.T) {
	s, fe := newTestStore(t)
	ctx := context.Background()
	require.True(t, s.Save(ctx, draftOn(model.NewDate(2024, time.March, 1), "kept"), "").Success)
	before := s.Entries()
	calls := fe.count()

	d := draftOn(model.NewDate(2024, time.March, 2), "bad")
	d.TimeSpent = "25:00"
	r := s.Save(ctx, d, "")

	assert.False(t, r.Success)
	assert.ErrorIs(t, r.Err, model.ErrValidation)
	assert.Contains(t, r.Message, "HH:MM")
	assert.Equal(t, before, s.Entries())
	assert.Equal(t, calls, fe.count(), "validation happens before any store call")
}

func TestSave_EditPreservesIdentity(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	created := s.Save(ctx, draftOn(model.NewDate(2024, time.March, 1), "draft"), "").Entry
	require.NotNil(t, created)

	// a later session for the same user carries a new display name
	s.SetSession(&model.Session{UserID: "u-alice", Username: "alice-renamed"})
	edit := model.EntryDraft{
		Date:         model.NewDate(2024, time.March, 4),
		Client:       "client-7",
		Task:         "task-3",
		DocketNumber: "D-42",
		Description:  "revised",
		TimeSpent:    "02:15",
	}
	r := s.Save(ctx, edit, created.ID)
	require.True(t, r.Success, r.Message)

	got := r.Entry
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.UserID, got.UserID)
	assert.Equal(t, "alice", got.UserName)
	assert.True(t, got.Date.Equal(edit.Date))
	assert.Equal(t, "client-7", got.Client)
	assert.Equal(t, "task-3", got.Task)
	assert.Equal(t, "D-42", got.DocketNumber)
	assert.Equal(t, "revised", got.Description)
	assert.Equal(t, "02:15", got.TimeSpent)

	list := s.Entries()
	require.Len(t, list, 1, "edit does not create a second entry")
	assert.Equal(t, created.ID, list[0].ID)
}

func TestSave_UnknownEditingIDCreates(t *testing.T) {
	s, _ := newTestStore(t)
	r := s.Save(context.Background(), draftOn(model.NewDate(2024, time.March, 1), "new"), "does-not-exist")
	require.True(t, r.Success)
	assert.NotEqual(t, "does-not-exist", r.Entry.ID)
	assert.Len(t, s.Entries(), 1)
}

func TestSave_StoreFailureLeavesListUnchanged(t *testing.T) {
	s, fe := newTestStore(t)
	ctx := context.Background()
	first := s.Save(ctx, draftOn(model.NewDate(2024, time.March, 1), "kept"), "").Entry
	before := s.Entries()

	fe.setFailMut(true)
	r := s.Save(ctx, draftOn(model.NewDate(2024, time.March, 2), "lost"), "")
	assert.False(t, r.Success)
	assert.ErrorIs(t, r.Err, errUnavailable)
	assert.NotEmpty(t, r.Message)
	assert.Equal(t, before, s.Entries())

	r = s.Save(ctx, draftOn(model.NewDate(2024, time.March, 3), "edit lost"), first.ID)
	assert.False(t, r.Success)
	assert.Equal(t, before, s.Entries())
}

func TestDelete_UnknownIDFails(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.True(t, s.Save(ctx, draftOn(model.NewDate(2024, time.March, 1), "kept"), "").Success)
	before := s.Entries()

	r := s.Delete(ctx, "missing")
	assert.False(t, r.Success)
	assert.ErrorIs(t, r.Err, model.ErrNotFound)
	assert.Equal(t, before, s.Entries())
}

func TestDelete_RemovesAndReloads(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	a := s.Save(ctx, draftOn(model.NewDate(2024, time.March, 1), "a"), "").Entry
	s.Save(ctx, draftOn(model.NewDate(2024, time.March, 2), "b"), "")

	r := s.Delete(ctx, a.ID)
	require.True(t, r.Success)
	list := s.Entries()
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Description)
}

func TestDelete_StoreFailureLeavesListUnchanged(t *testing.T) {
	s, fe := newTestStore(t)
	ctx := context.Background()
	a := s.Save(ctx, draftOn(model.NewDate(2024, time.March, 1), "a"), "").Entry
	before := s.Entries()

	fe.setFailMut(true)
	r := s.Delete(ctx, a.ID)
	assert.False(t, r.Success)
	assert.Equal(t, before, s.Entries())
}

func TestLoad_FailureEmptiesList(t *testing.T) {
	s, fe := newTestStore(t)
	ctx := context.Background()
	require.True(t, s.Save(ctx, draftOn(model.NewDate(2024, time.March, 1), "a"), "").Success)
	require.Len(t, s.Entries(), 1)

	fe.setFailList(true)
	r := s.Load(ctx)
	assert.False(t, r.Success)
	assert.ErrorIs(t, r.Err, errUnavailable)
	assert.Empty(t, s.Entries())
	assert.False(t, s.Loading())

	fe.setFailList(false)
	require.True(t, s.Load(ctx).Success)
	assert.Len(t, s.Entries(), 1)
}

func TestNoSession(t *testing.T) {
	fe := &flakyEntries{Entries: memstore.New().Entries()}
	s := New(fe, nil, zerolog.Nop())
	ctx := context.Background()

	for name, r := range map[string]Result{
		"load":   s.Load(ctx),
		"save":   s.Save(ctx, draftOn(model.NewDate(2024, time.March, 1), "x"), ""),
		"delete": s.Delete(ctx, "any"),
	} {
		assert.False(t, r.Success, name)
		assert.ErrorIs(t, r.Err, model.ErrAuthRequired, name)
		assert.Equal(t, "Authentication required.", r.Message, name)
	}
	assert.Empty(t, s.Entries())
	assert.Zero(t, fe.count())
}

func TestEntries_ReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.True(t, s.Save(ctx, draftOn(model.NewDate(2024, time.March, 1), "a"), "").Success)

	list := s.Entries()
	list[0].Description = "mutated"
	assert.Equal(t, "a", s.Entries()[0].Description)
}

func TestEntries_ScopedToSessionUser(t *testing.T) {
	shared := memstore.New().Entries()
	ctx := context.Background()
	a := New(shared, alice, zerolog.Nop())
	b := New(shared, &model.Session{UserID: "u-bob", Username: "bob"}, zerolog.Nop())

	mine := a.Save(ctx, draftOn(model.NewDate(2024, time.March, 1), "alice's"), "").Entry
	require.True(t, b.Load(ctx).Success)
	assert.Empty(t, b.Entries())

	r := b.Delete(ctx, mine.ID)
	assert.False(t, r.Success)
	assert.ErrorIs(t, r.Err, model.ErrNotFound)

	// bob cannot edit alice's entry; the id is unknown in his collection
	r = b.Save(ctx, draftOn(model.NewDate(2024, time.March, 2), "bob's"), mine.ID)
	require.True(t, r.Success)
	assert.NotEqual(t, mine.ID, r.Entry.ID)
	require.True(t, a.Load(ctx).Success)
	assert.Equal(t, "alice's", a.Entries()[0].Description)
}

// gatedEntries holds List until release is closed.
type gatedEntries struct {
	store.Entries
	entered chan struct{}
	release chan struct{}
	err     error
}

func (g *gatedEntries) List(ctx context.Context, req model.ListEntriesRequest) ([]*model.TimelineEntry, error) {
	g.entered <- struct{}{}
	<-g.release
	if g.err != nil {
		return nil, g.err
	}
	return g.Entries.List(ctx, req)
}

func TestLoad_LoadingWhileInFlight(t *testing.T) {
	for name, listErr := range map[string]error{"success": nil, "failure": errUnavailable} {
		t.Run(name, func(t *testing.T) {
			g := &gatedEntries{
				Entries: memstore.New().Entries(),
				entered: make(chan struct{}),
				release: make(chan struct{}),
				err:     listErr,
			}
			s := New(g, alice, zerolog.Nop())
			require.False(t, s.Loading())

			done := make(chan Result, 1)
			go func() { done <- s.Load(context.Background()) }()

			select {
			case <-g.entered:
			case <-time.After(time.Second):
				t.Fatal("Load never reached the store")
			}
			assert.True(t, s.Loading())

			close(g.release)
			var r Result
			select {
			case r = <-done:
			case <-time.After(time.Second):
				t.Fatal("Load did not return")
			}
			assert.Equal(t, listErr == nil, r.Success)
			assert.False(t, s.Loading())
		})
	}
}
