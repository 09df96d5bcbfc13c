// Package postgres owns the pgx connection pool, the unit-of-work helpers the
// repositories run their statements through, and the embedded schema.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-catalog-orders/internal/config"
	"github.com/ariefcatur/go-catalog-orders/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Querier is the statement surface shared by a pooled connection and a
// transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Provider hands out one connection per unit of work. The connection is
// released on every exit path of fn.
type Provider interface {
	WithConn(ctx context.Context, fn func(q Querier) error) error
	WithTx(ctx context.Context, fn func(q Querier) error) error
}

// ConnectionError reports that the store could not be reached at all.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string { return "postgres " + e.Op + ": " + e.Err.Error() }
func (e *ConnectionError) Unwrap() error { return e.Err }

func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

type DB struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

var _ Provider = (*DB)(nil)

func Connect(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pcfg.MaxConns = cfg.MaxConns
	pcfg.MinConns = cfg.MinConns
	pcfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	if cfg.Trace {
		pcfg.ConnConfig.Tracer = logger.NewQueryTracer(log)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, &ConnectionError{Op: "create pool", Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, &ConnectionError{Op: "ping", Err: err}
	}

	log.Info().
		Int32("max_conns", cfg.MaxConns).
		Bool("trace", cfg.Trace).
		Msg("connected to postgres")
	return &DB{Pool: pool, log: log}, nil
}

func (db *DB) Close() {
	db.log.Info().Msg("closing postgres pool")
	db.Pool.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return &ConnectionError{Op: "ping", Err: err}
	}
	return nil
}

func (db *DB) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, &ConnectionError{Op: "acquire", Err: err}
	}
	return conn, nil
}

// WithConn runs fn on a single pooled connection without a transaction.
func (db *DB) WithConn(ctx context.Context, fn func(q Querier) error) error {
	conn, err := db.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return fn(conn)
}

// WithTx runs fn inside a transaction. The transaction commits only when fn
// returns nil; any error or panic rolls it back and the error is returned as is.
func (db *DB) WithTx(ctx context.Context, fn func(q Querier) error) error {
	conn, err := db.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
