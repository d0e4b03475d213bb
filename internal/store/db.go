// Package store provides the PostgreSQL-backed frontier and corpus
// collections the crawl engine treats as its durable document store.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/vkarelin/newscrawl/migrations"
)

const (
	defaultMaxConns          int32         = 10
	defaultMinConns          int32         = 2
	defaultMaxConnIdleTime   time.Duration = 30 * time.Minute
	defaultMaxConnLifetime   time.Duration = time.Hour
	defaultHealthCheckPeriod time.Duration = time.Minute

	maxConnectionRetries = 10
	connectionRetrySleep = 2 * time.Second

	migrationLockID = 4200
)

// DB wraps the connection pool shared by the frontier and corpus stores.
type DB struct {
	Pool   *pgxpool.Pool
	Logger *zerolog.Logger
}

// New opens a connection pool against dsn, retrying while the database
// is not yet reachable (useful while a sidecar Postgres is starting up).
func New(ctx context.Context, dsn string, logger *zerolog.Logger) (*DB, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	config.MaxConns = defaultMaxConns
	config.MinConns = defaultMinConns
	config.MaxConnIdleTime = defaultMaxConnIdleTime
	config.MaxConnLifetime = defaultMaxConnLifetime
	config.HealthCheckPeriod = defaultHealthCheckPeriod

	return connectWithRetries(ctx, config, logger)
}

func connectWithRetries(ctx context.Context, config *pgxpool.Config, logger *zerolog.Logger) (*DB, error) {
	var (
		pool *pgxpool.Pool
		err  error
	)

	for i := 0; i < maxConnectionRetries; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return &DB{Pool: pool, Logger: logger}, nil
			}
		}

		if pool != nil {
			pool.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectionRetrySleep):
		}
	}

	return nil, fmt.Errorf("connect to database after %d retries: %w", maxConnectionRetries, err)
}

// Close releases the underlying connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// Ping reports whether the connection pool can still reach Postgres,
// satisfying internal/health.Pinger.
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

type gooseLogger struct {
	logger *zerolog.Logger
}

func (l *gooseLogger) Fatalf(format string, v ...interface{}) { l.logger.Fatal().Msgf(format, v...) }
func (l *gooseLogger) Printf(format string, v ...interface{}) { l.logger.Info().Msgf(format, v...) }

// Migrate brings the frontier/corpus schema up to date, serializing
// against other instances via a Postgres advisory lock.
func (db *DB) Migrate(ctx context.Context) error {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return fmt.Errorf("acquire advisory lock: %w", err)
	}

	defer func() {
		_, _ = conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID)
	}()

	dbSQL := stdlib.OpenDB(*db.Pool.Config().ConnConfig)
	defer dbSQL.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(&gooseLogger{logger: db.Logger})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(dbSQL, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
