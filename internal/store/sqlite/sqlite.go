package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/timewise/timewise/internal/model"
	"github.com/timewise/timewise/internal/store"
)

// NewWithDB wraps an open SQLite connection as a store.Store.
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db, now: time.Now} }

type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

func (s *sqliteStore) Users() store.Users       { return &users{s} }
func (s *sqliteStore) Sessions() store.Sessions { return &sessions{s} }
func (s *sqliteStore) Entries() store.Entries   { return &entries{s} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close releases the database handle.
func (s *sqliteStore) Close() error { return s.db.Close() }

// Timestamps are stored as unix nanoseconds so ordering is exact.
func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }
func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func isConstraint(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

// --- Users ---
type users struct{ s *sqliteStore }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	out := *m
	if out.UserID == "" {
		out.UserID = uuid.New().String()
	}
	out.CreationTime = u.s.now().UTC()
	_, err := u.s.db.ExecContext(ctx,
		`INSERT INTO Users (UserId, Email, Username, PasswordHash, CreationTime) VALUES (?,?,?,?,?)`,
		out.UserID, out.Email, out.Username, out.PasswordHash, toNanos(out.CreationTime))
	if err != nil {
		if isConstraint(err) {
			return nil, fmt.Errorf("%w: email already registered", model.ErrConflict)
		}
		return nil, err
	}
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	return u.scanOne(ctx, `WHERE UserId = ?`, userID)
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.scanOne(ctx, `WHERE Email = ?`, email)
}

func (u *users) scanOne(ctx context.Context, where, arg string) (*model.User, error) {
	var out model.User
	var created int64
	row := u.s.db.QueryRowContext(ctx, `SELECT UserId, Email, Username, PasswordHash, CreationTime FROM Users `+where, arg)
	if err := row.Scan(&out.UserID, &out.Email, &out.Username, &out.PasswordHash, &created); err != nil {
		return nil, notFound(err)
	}
	out.CreationTime = fromNanos(created)
	return &out, nil
}

// --- Sessions ---
type sessions struct{ s *sqliteStore }

func (ss *sessions) Create(ctx context.Context, m *model.Session) error {
	var expires sql.NullInt64
	if !m.ExpiresAt.IsZero() {
		expires = sql.NullInt64{Int64: toNanos(m.ExpiresAt), Valid: true}
	}
	_, err := ss.s.db.ExecContext(ctx,
		`INSERT INTO Sessions (Token, UserId, Username, Email, ExpiresAt) VALUES (?,?,?,?,?)`,
		m.Token, m.UserID, m.Username, m.Email, expires)
	if err != nil && isConstraint(err) {
		return fmt.Errorf("%w: session token reused", model.ErrConflict)
	}
	return err
}

func (ss *sessions) Get(ctx context.Context, token string) (*model.Session, error) {
	var out model.Session
	var expires sql.NullInt64
	row := ss.s.db.QueryRowContext(ctx, `SELECT Token, UserId, Username, Email, ExpiresAt FROM Sessions WHERE Token = ?`, token)
	if err := row.Scan(&out.Token, &out.UserID, &out.Username, &out.Email, &expires); err != nil {
		return nil, notFound(err)
	}
	if expires.Valid {
		out.ExpiresAt = fromNanos(expires.Int64)
	}
	return &out, nil
}

func (ss *sessions) Delete(ctx context.Context, token string) error {
	_, err := ss.s.db.ExecContext(ctx, `DELETE FROM Sessions WHERE Token = ?`, token)
	return err
}

func (ss *sessions) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := ss.s.db.ExecContext(ctx, `DELETE FROM Sessions WHERE ExpiresAt IS NOT NULL AND ExpiresAt <= ?`, toNanos(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Entries ---
type entries struct{ s *sqliteStore }

const entryColumns = `EntryId, EntryDate, UserId, UserName, Client, Task, DocketNumber, Description, TimeSpent, CreationTime, UpdateTime`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (*model.TimelineEntry, error) {
	var e model.TimelineEntry
	var created, updated int64
	if err := r.Scan(&e.ID, &e.Date, &e.UserID, &e.UserName, &e.Client, &e.Task, &e.DocketNumber,
		&e.Description, &e.TimeSpent, &created, &updated); err != nil {
		return nil, err
	}
	e.CreationTime = fromNanos(created)
	e.UpdateTime = fromNanos(updated)
	return &e, nil
}

func (r *entries) Create(ctx context.Context, e *model.TimelineEntry) (*model.TimelineEntry, error) {
	out := *e
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	now := r.s.now().UTC()
	out.CreationTime, out.UpdateTime = now, now
	_, err := r.s.db.ExecContext(ctx, `INSERT INTO TimelineEntries (`+entryColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		out.ID, out.Date, out.UserID, out.UserName, out.Client, out.Task, out.DocketNumber,
		out.Description, out.TimeSpent, toNanos(now), toNanos(now))
	if err != nil {
		if isConstraint(err) {
			return nil, fmt.Errorf("%w: entry %s exists", model.ErrConflict, out.ID)
		}
		return nil, err
	}
	return &out, nil
}

func (r *entries) Get(ctx context.Context, userID, entryID string) (*model.TimelineEntry, error) {
	row := r.s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM TimelineEntries WHERE UserId = ? AND EntryId = ?`, userID, entryID)
	out, err := scanEntry(row)
	if err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

func (r *entries) List(ctx context.Context, req model.ListEntriesRequest) ([]*model.TimelineEntry, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + entryColumns + ` FROM TimelineEntries WHERE UserId = ?`)
	args := []any{req.UserID}
	if !req.From.IsZero() {
		b.WriteString(` AND EntryDate >= ?`)
		args = append(args, req.From)
	}
	if !req.To.IsZero() {
		b.WriteString(` AND EntryDate <= ?`)
		args = append(args, req.To)
	}
	b.WriteString(` ORDER BY EntryDate DESC, CreationTime DESC, EntryId DESC`)

	rows, err := r.s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.TimelineEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *entries) Update(ctx context.Context, e *model.TimelineEntry) (*model.TimelineEntry, error) {
	now := r.s.now().UTC()
	res, err := r.s.db.ExecContext(ctx, `
        UPDATE TimelineEntries
        SET EntryDate = ?, UserName = ?, Client = ?, Task = ?, DocketNumber = ?, Description = ?, TimeSpent = ?, UpdateTime = ?
        WHERE UserId = ? AND EntryId = ?`,
		e.Date, e.UserName, e.Client, e.Task, e.DocketNumber, e.Description, e.TimeSpent, toNanos(now),
		e.UserID, e.ID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, model.ErrNotFound
	}
	return r.Get(ctx, e.UserID, e.ID)
}

func (r *entries) Delete(ctx context.Context, userID, entryID string) error {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM TimelineEntries WHERE UserId = ? AND EntryId = ?`, userID, entryID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
