package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Querier is the statement surface shared by the pool, a borrowed connection and a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
}

type DB interface {
	Querier
	PingContext(ctx context.Context) error
	Close() error
	Stats() sql.DBStats
	SQLX() *sqlx.DB
	// WithConn borrows one pooled connection for the duration of fn and releases it on every exit path.
	WithConn(ctx context.Context, fn func(ctx context.Context, q Querier) error) error
	// WithTx runs fn inside a transaction on a borrowed connection. fn's error rolls back.
	WithTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) error
}

type DatabaseInstance struct {
	*sqlx.DB
	logger         ectologger.Logger
	acquireTimeout time.Duration
}

type Option func(*DatabaseInstance)

// WithAcquireTimeout bounds how long WithConn and WithTx wait for a free pooled connection.
func WithAcquireTimeout(d time.Duration) Option {
	return func(db *DatabaseInstance) {
		db.acquireTimeout = d
	}
}

func NewDatabaseInstance(db *sqlx.DB, logger ectologger.Logger, opts ...Option) DB {
	instance := &DatabaseInstance{
		DB:     db,
		logger: logger,
	}
	for _, opt := range opts {
		opt(instance)
	}
	return instance
}

// ConnectionConfig describes the pool.
type ConnectionConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AcquireTimeout  time.Duration
}

// Open creates the pool without dialing; the first ping or query opens a connection.
func Open(cfg ConnectionConfig, logger ectologger.Logger) (DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return NewDatabaseInstance(db, logger, WithAcquireTimeout(cfg.AcquireTimeout)), nil
}

func (db *DatabaseInstance) SQLX() *sqlx.DB {
	return db.DB
}

func (db *DatabaseInstance) WithConn(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	conn, err := db.acquire(ctx)
	if err != nil {
		return err
	}
	defer db.release(ctx, conn)

	return fn(ctx, conn)
}

func (db *DatabaseInstance) WithTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	conn, err := db.acquire(ctx)
	if err != nil {
		return err
	}
	defer db.release(ctx, conn)

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		db.logger.WithContext(ctx).WithError(err).Error("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			db.logger.WithContext(ctx).WithError(rbErr).Warn("failed to roll back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		db.logger.WithContext(ctx).WithError(err).Error("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (db *DatabaseInstance) acquire(ctx context.Context) (*sqlx.Conn, error) {
	acquireCtx, cancel := ctx, context.CancelFunc(func() {})
	if db.acquireTimeout > 0 {
		acquireCtx, cancel = context.WithTimeout(ctx, db.acquireTimeout)
	}
	defer cancel()

	conn, err := db.Connx(acquireCtx)
	if err != nil {
		stats := db.Stats()
		db.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"wait_count":       stats.WaitCount,
		}).Error("failed to acquire database connection")
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return conn, nil
}

func (db *DatabaseInstance) release(ctx context.Context, conn *sqlx.Conn) {
	if err := conn.Close(); err != nil {
		db.logger.WithContext(ctx).WithError(err).Warn("failed to release database connection")
	}
}
