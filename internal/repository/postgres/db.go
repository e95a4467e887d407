package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/craftline/forecast-backend/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute

	// Concurrent transactions are capped below the pool size so plain reads
	// always have connections left.
	maxConcurrentTx = 10
)

// DB wraps the sqlx pool with a transaction concurrency limit.
type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

var (
	dbInstance *DB
	dbOnce     sync.Once
)

// NewDB opens the shared connection pool. Repeated calls return the same
// instance.
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	var err error
	dbOnce.Do(func() {
		var pool *sqlx.DB
		pool, err = sqlx.Connect("postgres", dsn(cfg))
		if err != nil {
			err = fmt.Errorf("connect postgres: %w", err)
			return
		}

		pool.SetMaxOpenConns(maxOpenConns)
		pool.SetMaxIdleConns(maxIdleConns)
		pool.SetConnMaxLifetime(connMaxLifetime)

		dbInstance = &DB{DB: pool, sem: semaphore.NewWeighted(maxConcurrentTx)}
	})
	return dbInstance, err
}

// Wrap adapts an externally opened connection (e.g. the CLI's pgx handle)
// to the repository layer.
func Wrap(pool *sqlx.DB) *DB {
	return &DB{DB: pool, sem: semaphore.NewWeighted(maxConcurrentTx)}
}

func dsn(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// WithTx runs fn inside a transaction, committing on nil and rolling back on
// error or panic.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire tx slot: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Error().Err(rbErr).Msg("rollback failed")
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
