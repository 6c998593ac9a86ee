// internal/warehouse/db.go
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/sync/semaphore"

	"github.com/jaysongor/ducklens-backend/internal/config"
)

// DB wraps sqlx with a semaphore so concurrent API-triggered refreshes and
// readers cannot exhaust the connection pool.
type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

const maxConcurrentTx = 8

func NewDB(cfg config.DatabaseConfig) (*DB, error) {
	return NewDBWithDriver("postgres", cfg)
}

// NewDBWithDriver connects using an alternative registered driver; the batch
// CLI uses the pgx stdlib driver while the server sticks with lib/pq.
func NewDBWithDriver(driver string, cfg config.DatabaseConfig) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &DB{DB: db, sem: semaphore.NewWeighted(maxConcurrentTx)}, nil
}

// WithTx runs fn inside a transaction, committing on nil and rolling back on
// error or panic. Entry is bounded by the semaphore.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire tx slot: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
