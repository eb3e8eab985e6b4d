package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/timewise/timewise/internal/model"
	"github.com/timewise/timewise/internal/store"
)

//go:embed schema.sql
var schemaSQL string

const uniqueViolation = "23505"

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	return err
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users       { return &users{db: s.db} }
func (s *pgStore) Sessions() store.Sessions { return &sessions{db: s.db} }
func (s *pgStore) Entries() store.Entries   { return &entries{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *pgStore) Close() error { return s.db.Close() }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

// --- Users ---
type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	id := m.UserID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, email, username, password_hash)
        VALUES ($1,$2,$3,$4)
        RETURNING creation_time
    `, id, m.Email, m.Username, m.PasswordHash)
	if err := row.Scan(&created); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email already registered", model.ErrConflict)
		}
		return nil, err
	}
	out := *m
	out.UserID = id
	out.CreationTime = created
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	return u.scanOne(ctx, `WHERE user_id=$1`, userID)
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.scanOne(ctx, `WHERE email=$1`, email)
}

func (u *users) scanOne(ctx context.Context, where string, arg string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, username, password_hash, creation_time
        FROM users `+where, arg)
	if err := row.Scan(&out.UserID, &out.Email, &out.Username, &out.PasswordHash, &out.CreationTime); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// --- Sessions ---
type sessions struct{ db *sql.DB }

func (s *sessions) Create(ctx context.Context, m *model.Session) error {
	var expires sql.NullTime
	if !m.ExpiresAt.IsZero() {
		expires = sql.NullTime{Time: m.ExpiresAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO sessions (token, user_id, username, email, expires_at)
        VALUES ($1,$2,$3,$4,$5)
    `, m.Token, m.UserID, m.Username, m.Email, expires)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: session token reused", model.ErrConflict)
	}
	return err
}

func (s *sessions) Get(ctx context.Context, token string) (*model.Session, error) {
	var out model.Session
	var expires sql.NullTime
	row := s.db.QueryRowContext(ctx, `
        SELECT token, user_id, username, email, expires_at FROM sessions WHERE token=$1
    `, token)
	if err := row.Scan(&out.Token, &out.UserID, &out.Username, &out.Email, &expires); err != nil {
		return nil, notFound(err)
	}
	if expires.Valid {
		out.ExpiresAt = expires.Time
	}
	return &out, nil
}

func (s *sessions) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token=$1`, token)
	return err
}

func (s *sessions) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Entries ---
type entries struct{ db *sql.DB }

const entryColumns = `entry_id, entry_date, user_id, user_name, client, task, docket_number, description, time_spent, creation_time, update_time`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (*model.TimelineEntry, error) {
	var e model.TimelineEntry
	if err := r.Scan(&e.ID, &e.Date, &e.UserID, &e.UserName, &e.Client, &e.Task, &e.DocketNumber,
		&e.Description, &e.TimeSpent, &e.CreationTime, &e.UpdateTime); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *entries) Create(ctx context.Context, e *model.TimelineEntry) (*model.TimelineEntry, error) {
	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}
	row := r.db.QueryRowContext(ctx, `
        INSERT INTO timeline_entries (user_id, entry_id, entry_date, user_name, client, task, docket_number, description, time_spent)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING `+entryColumns,
		e.UserID, id, e.Date, e.UserName, e.Client, e.Task, e.DocketNumber, e.Description, e.TimeSpent)
	out, err := scanEntry(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: entry %s exists", model.ErrConflict, id)
		}
		return nil, err
	}
	return out, nil
}

func (r *entries) Get(ctx context.Context, userID, entryID string) (*model.TimelineEntry, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+entryColumns+` FROM timeline_entries WHERE user_id=$1 AND entry_id=$2
    `, userID, entryID)
	out, err := scanEntry(row)
	if err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

func (r *entries) List(ctx context.Context, req model.ListEntriesRequest) ([]*model.TimelineEntry, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + entryColumns + ` FROM timeline_entries WHERE user_id=$1`)
	args := []any{req.UserID}
	if !req.From.IsZero() {
		args = append(args, req.From)
		fmt.Fprintf(&b, " AND entry_date >= $%d", len(args))
	}
	if !req.To.IsZero() {
		args = append(args, req.To)
		fmt.Fprintf(&b, " AND entry_date <= $%d", len(args))
	}
	b.WriteString(` ORDER BY entry_date DESC, creation_time DESC, entry_id DESC`)

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
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
	row := r.db.QueryRowContext(ctx, `
        UPDATE timeline_entries
        SET entry_date=$3, user_name=$4, client=$5, task=$6, docket_number=$7, description=$8, time_spent=$9, update_time=now()
        WHERE user_id=$1 AND entry_id=$2
        RETURNING `+entryColumns,
		e.UserID, e.ID, e.Date, e.UserName, e.Client, e.Task, e.DocketNumber, e.Description, e.TimeSpent)
	out, err := scanEntry(row)
	if err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

func (r *entries) Delete(ctx context.Context, userID, entryID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timeline_entries WHERE user_id=$1 AND entry_id=$2`, userID, entryID)
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
