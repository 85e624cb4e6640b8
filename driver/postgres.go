// Package driver opens the connections the cart session depends on.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPool is the subset of *pgxpool.Pool the repositories use.
type PostgresPool interface {
	// BeginTx starts a new transaction and returns a Tx.
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)

	// Exec executes an SQL command and returns the command tag.
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)

	// Query executes an SQL query and returns the resulting rows.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

	// QueryRow executes an SQL query and returns a single row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row

	// SendBatch sends a batch of queries to the server. The batch is executed as a single transaction.
	SendBatch(ctx context.Context, batch *pgx.Batch) pgx.BatchResults

	// Close closes the pool and all its connections.
	Close()
}

// DB holds the driver connection pool
type DB struct {
	Pool PostgresPool
}

// maxOpenDbConn defines the maximum number of open driver connections.
const maxOpenDbConn = 10

// maxDbLifetime is the maximum lifetime of a driver connection in the pool.
// When a connection reaches its maximum lifetime, it will be closed and a new connection will be created.
const maxDbLifetime = 5 * time.Minute

// ConnectSQL parses dsn, opens a pgxpool with the package limits and checks that a connection can be
// acquired. The returned DB is owned by the caller, who must Close its pool.
func ConnectSQL(ctx context.Context, dsn string) (*DB, error) {

	// parse the config
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	config.MaxConns = int32(maxOpenDbConn)
	config.MaxConnLifetime = maxDbLifetime

	// create the pool
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err = testDB(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &DB{Pool: pool}, nil
}

// testDB acquires and releases a connection from the pool
func testDB(ctx context.Context, p *pgxpool.Pool) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire postgres connection: %w", err)
	}
	defer conn.Release()
	return nil
}
