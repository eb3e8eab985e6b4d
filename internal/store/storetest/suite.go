package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timewise/timewise/internal/model"
	"github.com/timewise/timewise/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("Users", func(t *testing.T) { testUsers(t, makeStore(t)) })
	t.Run("Sessions", func(t *testing.T) { testSessions(t, makeStore(t)) })
	t.Run("Entries", func(t *testing.T) { testEntries(t, makeStore(t)) })
	t.Run("EntryRanges", func(t *testing.T) { testEntryRanges(t, makeStore(t)) })
}

func newUser(t *testing.T, s store.Store) *model.User {
	t.Helper()
	id := "u-" + uuid.New().String()
	u, err := s.Users().Create(context.Background(), &model.User{
		UserID:       id,
		Email:        id + "@example.test",
		Username:     "tester",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return u
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s)
	assert.False(t, u.CreationTime.IsZero())

	got, err := s.Users().Get(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, "hash", got.PasswordHash)

	byEmail, err := s.Users().GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.UserID, byEmail.UserID)

	_, err = s.Users().Create(ctx, &model.User{UserID: "u-" + uuid.New().String(), Email: u.Email, Username: "dup", PasswordHash: "x"})
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = s.Users().Get(ctx, "missing-"+uuid.New().String())
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Users().GetByEmail(ctx, "nobody-"+uuid.New().String()+"@example.test")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testSessions(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s)
	now := time.Now().UTC()

	live := &model.Session{Token: uuid.New().String(), UserID: u.UserID, Username: u.Username, Email: u.Email, ExpiresAt: now.Add(time.Hour)}
	stale := &model.Session{Token: uuid.New().String(), UserID: u.UserID, Username: u.Username, Email: u.Email, ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, s.Sessions().Create(ctx, live))
	require.NoError(t, s.Sessions().Create(ctx, stale))

	got, err := s.Sessions().Get(ctx, live.Token)
	require.NoError(t, err)
	assert.Equal(t, u.UserID, got.UserID)
	assert.WithinDuration(t, live.ExpiresAt, got.ExpiresAt, time.Millisecond)

	n, err := s.Sessions().DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
	_, err = s.Sessions().Get(ctx, stale.Token)
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.Sessions().Delete(ctx, live.Token))
	_, err = s.Sessions().Get(ctx, live.Token)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// deleting an absent session is not an error
	require.NoError(t, s.Sessions().Delete(ctx, live.Token))
}

func testEntries(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s)
	other := newUser(t, s)
	day := model.NewDate(2024, time.March, 8)

	e1, err := s.Entries().Create(ctx, &model.TimelineEntry{
		Date: day, UserID: u.UserID, UserName: u.Username,
		Client: "client-1", Task: "task-1", Description: "Drafted claims", TimeSpent: "1:30",
	})
	require.NoError(t, err)
	require.NotEmpty(t, e1.ID)
	assert.True(t, e1.Date.Equal(day))
	assert.False(t, e1.CreationTime.IsZero())

	time.Sleep(5 * time.Millisecond) // ensure monotonic creation time ordering
	e2, err := s.Entries().Create(ctx, &model.TimelineEntry{
		Date: day, UserID: u.UserID, UserName: u.Username,
		Client: "client-2", Task: "task-2", DocketNumber: "D-7", Description: "Reviewed office action", TimeSpent: "0:45",
	})
	require.NoError(t, err)

	got, err := s.Entries().Get(ctx, u.UserID, e2.ID)
	require.NoError(t, err)
	assert.Equal(t, "D-7", got.DocketNumber)
	assert.Equal(t, "0:45", got.TimeSpent)

	_, err = s.Entries().Get(ctx, other.UserID, e2.ID)
	assert.ErrorIs(t, err, model.ErrNotFound, "entries are scoped by owner")

	lst, err := s.Entries().List(ctx, model.ListEntriesRequest{UserID: u.UserID})
	require.NoError(t, err)
	require.Len(t, lst, 2)
	assert.Equal(t, e2.ID, lst[0].ID, "newest creation first within a day")
	assert.Equal(t, e1.ID, lst[1].ID)

	empty, err := s.Entries().List(ctx, model.ListEntriesRequest{UserID: other.UserID})
	require.NoError(t, err)
	assert.Empty(t, empty)

	time.Sleep(5 * time.Millisecond)
	edit := *e1
	edit.Description = "Drafted dependent claims"
	edit.Date = day.AddDays(-1)
	updated, err := s.Entries().Update(ctx, &edit)
	require.NoError(t, err)
	assert.Equal(t, e1.ID, updated.ID)
	assert.Equal(t, "Drafted dependent claims", updated.Description)
	assert.True(t, updated.Date.Equal(day.AddDays(-1)))
	assert.WithinDuration(t, e1.CreationTime, updated.CreationTime, time.Millisecond)
	assert.True(t, updated.UpdateTime.After(e1.UpdateTime) || updated.UpdateTime.Equal(e1.UpdateTime))

	missing := *e1
	missing.ID = "missing-" + uuid.New().String()
	_, err = s.Entries().Update(ctx, &missing)
	assert.ErrorIs(t, err, model.ErrNotFound)

	foreign := *e1
	foreign.UserID = other.UserID
	_, err = s.Entries().Update(ctx, &foreign)
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.ErrorIs(t, s.Entries().Delete(ctx, other.UserID, e1.ID), model.ErrNotFound)
	require.NoError(t, s.Entries().Delete(ctx, u.UserID, e1.ID))
	assert.ErrorIs(t, s.Entries().Delete(ctx, u.UserID, e1.ID), model.ErrNotFound)

	lst, err = s.Entries().List(ctx, model.ListEntriesRequest{UserID: u.UserID})
	require.NoError(t, err)
	require.Len(t, lst, 1)
	assert.Equal(t, e2.ID, lst[0].ID)
}

func testEntryRanges(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s)

	days := []model.Date{
		model.NewDate(2024, time.February, 28),
		model.NewDate(2024, time.March, 1),
		model.NewDate(2024, time.March, 15),
		model.NewDate(2024, time.March, 31),
		model.NewDate(2024, time.April, 1),
	}
	for _, d := range days {
		_, err := s.Entries().Create(ctx, &model.TimelineEntry{
			Date: d, UserID: u.UserID, UserName: u.Username,
			Client: "client-1", Task: "task-1", Description: "work on " + d.String(), TimeSpent: "1:00",
		})
		require.NoError(t, err)
	}

	all, err := s.Entries().List(ctx, model.ListEntriesRequest{UserID: u.UserID})
	require.NoError(t, err)
	require.Len(t, all, len(days))
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Date.After(all[i-1].Date), "dates must be descending")
	}

	march, err := s.Entries().List(ctx, model.ListEntriesRequest{
		UserID: u.UserID,
		From:   model.NewDate(2024, time.March, 1),
		To:     model.NewDate(2024, time.March, 31),
	})
	require.NoError(t, err)
	require.Len(t, march, 3, "both bounds are inclusive")
	assert.Equal(t, "2024-03-31", march[0].Date.String())
	assert.Equal(t, "2024-03-01", march[2].Date.String())

	since, err := s.Entries().List(ctx, model.ListEntriesRequest{UserID: u.UserID, From: model.NewDate(2024, time.March, 15)})
	require.NoError(t, err)
	assert.Len(t, since, 3)

	until, err := s.Entries().List(ctx, model.ListEntriesRequest{UserID: u.UserID, To: model.NewDate(2024, time.February, 28)})
	require.NoError(t, err)
	assert.Len(t, until, 1)
}
