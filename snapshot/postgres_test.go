package snapshot

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"go.uber.org/zap/zaptest"

	"gofalre.io/storefront/driver"
)

func newPostgresRepository(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)

	logger := zaptest.NewLogger(t)
	return NewPostgresRepository(mock, driver.NewTransactionManager(mock, logger), logger), mock
}

func TestPostgresRepositoryGet(t *testing.T) {
	repo, mock := newPostgresRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(getSnapshot)).
		WithArgs("cart").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(`[{"id":1,"amount":2}]`))

	v, found, err := repo.Get(context.Background(), "cart")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if v != `[{"id":1,"amount":2}]` {
		t.Fatalf("got %q", v)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresRepositoryGetMissing(t *testing.T) {
	repo, mock := newPostgresRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(getSnapshot)).
		WithArgs("cart").
		WillReturnError(pgx.ErrNoRows)

	if _, found, err := repo.Get(context.Background(), "cart"); err != nil || found {
		t.Fatalf("expected missing, found=%v err=%v", found, err)
	}
}

func TestPostgresRepositorySetUpsertsInTransaction(t *testing.T) {
	repo, mock := newPostgresRepository(t)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectExec(regexp.QuoteMeta(upsertSnapshot)).
		WithArgs("cart", "[]").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := repo.Set(context.Background(), "cart", "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresRepositorySetRollsBack(t *testing.T) {
	repo, mock := newPostgresRepository(t)
	boom := errors.New("connection reset")

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectExec(regexp.QuoteMeta(upsertSnapshot)).
		WithArgs("cart", "[]").
		WillReturnError(boom)
	mock.ExpectRollback()

	if err := repo.Set(context.Background(), "cart", "[]"); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresRepositorySetRetriesSerializationFailure(t *testing.T) {
	repo, mock := newPostgresRepository(t)
	conflict := &pgconn.PgError{Code: "40001", Message: "could not serialize access"}

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectExec(regexp.QuoteMeta(upsertSnapshot)).
		WithArgs("cart", "[]").
		WillReturnError(conflict)
	mock.ExpectRollback()
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectExec(regexp.QuoteMeta(upsertSnapshot)).
		WithArgs("cart", "[]").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := repo.Set(context.Background(), "cart", "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresRepositoryEnsureSchema(t *testing.T) {
	repo, mock := newPostgresRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(createSnapshotTable)).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
