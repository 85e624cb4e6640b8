package snapshot

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gofalre.io/storefront/driver"
)

const (
	createSnapshotTable = `CREATE TABLE IF NOT EXISTS cart_snapshots (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

	getSnapshot = `SELECT value FROM cart_snapshots WHERE key = $1`

	upsertSnapshot = `INSERT INTO cart_snapshots (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

var _ Repository = (*PostgresRepository)(nil)

// PostgresRepository keeps snapshots in the cart_snapshots table.
type PostgresRepository struct {
	conn   driver.PostgresPool
	tm     *driver.TransactionManager
	logger *zap.Logger
}

func NewPostgresRepository(conn driver.PostgresPool, tm *driver.TransactionManager, logger *zap.Logger) *PostgresRepository {
	return &PostgresRepository{
		conn:   conn,
		tm:     tm,
		logger: logger,
	}
}

// EnsureSchema creates the cart_snapshots table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.conn.Exec(ctx, createSnapshotTable); err != nil {
		r.logger.Error("failed to create cart_snapshots table", zap.Error(err))
		return err
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.conn.QueryRow(ctx, getSnapshot, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("failed to get cart snapshot", zap.String("key", key), zap.Error(err))
		return "", false, err
	}
	return value, true, nil
}

// Set upserts the snapshot in a serializable transaction, retried on serialization
// failures and deadlocks.
func (r *PostgresRepository) Set(ctx context.Context, key, value string) error {
	return r.tm.ExecuteSerializableTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertSnapshot, key, value); err != nil {
			r.logger.Error("failed to upsert cart snapshot", zap.String("key", key), zap.Error(err))
			return err
		}
		return nil
	})
}
