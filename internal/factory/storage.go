package factory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/timewise/timewise/internal/config"
	storepkg "github.com/timewise/timewise/internal/store"
	"github.com/timewise/timewise/internal/store/memstore"
	storepg "github.com/timewise/timewise/internal/store/postgres"
	storesqlite "github.com/timewise/timewise/internal/store/sqlite"
)

// NewStore returns the store.Store selected by cfg.DBDriver with its schema in place.
// SQL connections are retried with exponential backoff for up to
// BootstrapTimeoutSeconds so the service can start alongside its database.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return memstore.New(), nil

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("TIMEWISE_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := connect(ctx, cfg, log, func(ctx context.Context) (*sql.DB, error) {
			return storepg.Open(ctx, cfg.PostgresDSN)
		})
		if err != nil {
			return nil, err
		}
		if err := storepg.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		log.Debug().Str("driver", cfg.DBDriver).Msg("store schema ensured")
		return storepg.NewWithDB(db), nil

	case "sqlite":
		db, err := connect(ctx, cfg, log, func(ctx context.Context) (*sql.DB, error) {
			return storesqlite.Open(ctx, cfg.SQLitePath)
		})
		if err != nil {
			return nil, err
		}
		if err := storesqlite.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite schema: %w", err)
		}
		log.Debug().Str("driver", cfg.DBDriver).Str("path", cfg.SQLitePath).Msg("store schema ensured")
		return storesqlite.NewWithDB(db), nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}

func connect(ctx context.Context, cfg *config.Config, log zerolog.Logger, open func(context.Context) (*sql.DB, error)) (*sql.DB, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 250 * time.Millisecond
	exp.MaxInterval = 5 * time.Second
	exp.MaxElapsedTime = time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second

	var db *sql.DB
	op := func() error {
		var err error
		db, err = open(ctx)
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("driver", cfg.DBDriver).Dur("retry_in", wait).Msg("store connect failed; retrying")
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(exp, ctx), notify); err != nil {
		return nil, fmt.Errorf("connect %s store: %w", cfg.DBDriver, err)
	}
	return db, nil
}
