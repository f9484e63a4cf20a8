package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/daylog/internal/domain"
)

// UserRepo defines the persistence operations for the per-user state this
// service owns. Users are registered elsewhere; their row here is created on
// first use.
type UserRepo interface {
	// Get returns the user's state, creating an empty row on first use.
	Get(ctx context.Context, id uuid.UUID) (domain.User, error)

	// GetForUpdate is Get followed by a row lock held until the surrounding
	// transaction ends. Every operation that reads and then rewrites a user's
	// entries takes this lock first, which serializes them per user.
	GetForUpdate(ctx context.Context, id uuid.UUID) (domain.User, error)

	// SaveStreak writes streak and last_check_in together.
	SaveStreak(ctx context.Context, id uuid.UUID, streak int, lastCheckIn time.Time) error

	// SaveNote overwrites one of the user's notes.
	SaveNote(ctx context.Context, id uuid.UUID, kind domain.NoteKind, content string) error
}

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userColumns = `id, streak, last_check_in, quick_note, notebook`

// Get upserts the user row and returns it.
// The DO UPDATE SET trick forces the RETURNING clause to fire even when the
// row already exists.
func (r *pgUserRepo) Get(ctx context.Context, id uuid.UUID) (domain.User, error) {
	const q = `
		INSERT INTO users (id)
		VALUES (@id)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING ` + userColumns

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Get: %w", err)
	}
	return result, nil
}

// GetForUpdate makes sure the row exists, then locks it.
func (r *pgUserRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.User, error) {
	const ensure = `INSERT INTO users (id) VALUES (@id) ON CONFLICT (id) DO NOTHING`
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = @id FOR UPDATE`

	if _, err := r.db.Exec(ctx, ensure, pgx.NamedArgs{"id": id}); err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetForUpdate: %w", err)
	}

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetForUpdate: %w", err)
	}
	return result, nil
}

// SaveStreak updates both streak columns in one statement.
func (r *pgUserRepo) SaveStreak(ctx context.Context, id uuid.UUID, streak int, lastCheckIn time.Time) error {
	const q = `
		UPDATE users
		SET streak = @streak, last_check_in = @last_check_in
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":            id,
		"streak":        streak,
		"last_check_in": pgtype.Date{Time: lastCheckIn, Valid: true},
	})
	if err != nil {
		return fmt.Errorf("repo.UserRepo.SaveStreak: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.UserRepo.SaveStreak: %w", domain.ErrNotFound)
	}
	return nil
}

// SaveNote writes the column selected by kind.
func (r *pgUserRepo) SaveNote(ctx context.Context, id uuid.UUID, kind domain.NoteKind, content string) error {
	var q string
	switch kind {
	case domain.QuickNote:
		q = `UPDATE users SET quick_note = @content WHERE id = @id`
	case domain.Notebook:
		q = `UPDATE users SET notebook = @content WHERE id = @id`
	default:
		return fmt.Errorf("repo.UserRepo.SaveNote: %w: unknown note kind %q", domain.ErrValidation, kind)
	}

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "content": content})
	if err != nil {
		return fmt.Errorf("repo.UserRepo.SaveNote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.UserRepo.SaveNote: %w", domain.ErrNotFound)
	}
	return nil
}

// scanUser maps a single database row into a domain.User.
func scanUser(s scanner) (domain.User, error) {
	var (
		u           domain.User
		id          pgtype.UUID
		lastCheckIn pgtype.Date
	)

	err := s.Scan(&id, &u.Streak, &lastCheckIn, &u.QuickNote, &u.Notebook)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}

	u.ID = uuid.UUID(id.Bytes)
	if lastCheckIn.Valid {
		d := domain.CivilDate(lastCheckIn.Time)
		u.LastCheckIn = &d
	}
	return u, nil
}
