// Package repo contains all database access logic for the Daylog API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// txDB is a db that can also open a transaction. On a pgx.Tx, Begin opens a
// savepoint, so a Transactor built on a test transaction still rolls back
// with it.
type txDB interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repos groups the repositories bound to one connection or transaction.
type Repos struct {
	Entries  EntryRepo
	Users    UserRepo
	Feedback FeedbackRepo
}

// NewRepos binds every repository to db.
func NewRepos(db db) Repos {
	return Repos{
		Entries:  NewEntryRepo(db),
		Users:    NewUserRepo(db),
		Feedback: NewFeedbackRepo(db),
	}
}

// Transactor runs a function against repositories bound to a single
// transaction. The transaction commits when fn returns nil and rolls back
// otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Repos) error) error
}

// pgTransactor is the Postgres implementation of Transactor.
type pgTransactor struct {
	db txDB
}

// NewTransactor constructs a Transactor on top of db.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewTransactor(db txDB) Transactor {
	return &pgTransactor{db: db}
}

// WithinTx begins a transaction, hands fn repos bound to it, and commits.
func (t *pgTransactor) WithinTx(ctx context.Context, fn func(Repos) error) error {
	err := pgx.BeginFunc(ctx, t.db, func(tx pgx.Tx) error {
		return fn(NewRepos(tx))
	})
	if err != nil {
		return fmt.Errorf("repo.Transactor.WithinTx: %w", err)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scan helpers to
// be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}
