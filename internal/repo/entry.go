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

// EntryRepo defines the persistence operations for log entries.
// Every operation is scoped by the owning user's ID.
type EntryRepo interface {
	// Create inserts a new active entry and returns the persisted record.
	// CreatedAt is taken from the argument so callers control the clock.
	Create(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error)

	// GetByID retrieves a single entry regardless of owner, so the caller can
	// tell a missing entry from one owned by someone else.
	// Returns domain.ErrNotFound if no entry with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.LogEntry, error)

	// ListActive returns the user's active entries ordered by created_at descending.
	ListActive(ctx context.Context, userID uuid.UUID) ([]domain.LogEntry, error)

	// Archive moves each stamped entry to history under its stamp's date, in a
	// single batch. Entries that are already archived are left untouched.
	// Returns the number of entries archived.
	Archive(ctx context.Context, userID uuid.UUID, stamps []domain.ArchiveStamp) (int64, error)

	// ArchiveAllActive moves every active entry of the user to history under day.
	ArchiveAllActive(ctx context.Context, userID uuid.UUID, day time.Time) (int64, error)

	// ListArchivedRange returns archived entries with archive_date in
	// [start, end], ordered by archive_date descending then created_at descending.
	ListArchivedRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]domain.LogEntry, error)

	// HasArchivedBefore reports whether any archived entry has archive_date < day.
	HasArchivedBefore(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error)

	// RecentCategories returns up to limit distinct labelled categories,
	// most recently used first. domain.Uncategorized is never returned.
	RecentCategories(ctx context.Context, userID uuid.UUID, limit int) ([]string, error)

	// SetCategories writes the category of each entry in the map, in a single batch.
	SetCategories(ctx context.Context, userID uuid.UUID, categories map[uuid.UUID]string) error

	// ListAll returns every entry of the user ordered by created_at ascending.
	ListAll(ctx context.Context, userID uuid.UUID) ([]domain.LogEntry, error)

	// Delete removes an entry owned by the user.
	// Returns domain.ErrNotFound if no such entry exists for that user.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// pgEntryRepo is the Postgres implementation of EntryRepo.
type pgEntryRepo struct {
	db db
}

// NewEntryRepo constructs an EntryRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewEntryRepo(db db) EntryRepo {
	return &pgEntryRepo{db: db}
}

const entryColumns = `id, user_id, description, start_time, end_time, category, is_archived, archive_date, created_at`

// Create inserts a new entry row in the active state.
func (r *pgEntryRepo) Create(ctx context.Context, e domain.LogEntry) (domain.LogEntry, error) {
	const q = `
		INSERT INTO log_entries (user_id, description, start_time, end_time, category, created_at)
		VALUES (@user_id, @description, @start_time, @end_time, @category, @created_at)
		RETURNING ` + entryColumns

	category := e.Category
	if category == "" {
		category = domain.Uncategorized
	}

	args := pgx.NamedArgs{
		"user_id":     e.UserID,
		"description": e.Description,
		"start_time":  e.StartTime,
		"end_time":    e.EndTime,
		"category":    category,
		"created_at":  e.CreatedAt,
	}

	result, err := scanEntry(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("repo.EntryRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves an entry by primary key.
func (r *pgEntryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.LogEntry, error) {
	const q = `SELECT ` + entryColumns + ` FROM log_entries WHERE id = @id`

	result, err := scanEntry(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("repo.EntryRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListActive returns the open day's entries, newest first.
func (r *pgEntryRepo) ListActive(ctx context.Context, userID uuid.UUID) ([]domain.LogEntry, error) {
	const q = `
		SELECT ` + entryColumns + `
		FROM log_entries
		WHERE user_id = @user_id AND NOT is_archived
		ORDER BY created_at DESC`

	entries, err := r.list(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.EntryRepo.ListActive: %w", err)
	}
	return entries, nil
}

// Archive stamps each entry in one round trip using a pgx.Batch.
func (r *pgEntryRepo) Archive(ctx context.Context, userID uuid.UUID, stamps []domain.ArchiveStamp) (int64, error) {
	if len(stamps) == 0 {
		return 0, nil
	}

	const q = `
		UPDATE log_entries
		SET is_archived = true, archive_date = $3
		WHERE id = $1 AND user_id = $2 AND NOT is_archived`

	b := &pgx.Batch{}
	for _, s := range stamps {
		b.Queue(q, s.ID, userID, pgtype.Date{Time: s.Date, Valid: true})
	}

	br := r.db.SendBatch(ctx, b)
	defer br.Close()

	var archived int64
	for range stamps {
		tag, err := br.Exec()
		if err != nil {
			return 0, fmt.Errorf("repo.EntryRepo.Archive: %w", err)
		}
		archived += tag.RowsAffected()
	}
	return archived, nil
}

// ArchiveAllActive stamps the whole active set with one date.
func (r *pgEntryRepo) ArchiveAllActive(ctx context.Context, userID uuid.UUID, day time.Time) (int64, error) {
	const q = `
		UPDATE log_entries
		SET is_archived = true, archive_date = @day
		WHERE user_id = @user_id AND NOT is_archived`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"user_id": userID,
		"day":     pgtype.Date{Time: day, Valid: true},
	})
	if err != nil {
		return 0, fmt.Errorf("repo.EntryRepo.ArchiveAllActive: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListArchivedRange returns one window of history, already in grouping order.
func (r *pgEntryRepo) ListArchivedRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]domain.LogEntry, error) {
	const q = `
		SELECT ` + entryColumns + `
		FROM log_entries
		WHERE user_id = @user_id
		  AND is_archived
		  AND archive_date BETWEEN @start AND @end
		ORDER BY archive_date DESC, created_at DESC`

	entries, err := r.list(ctx, q, pgx.NamedArgs{
		"user_id": userID,
		"start":   pgtype.Date{Time: start, Valid: true},
		"end":     pgtype.Date{Time: end, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("repo.EntryRepo.ListArchivedRange: %w", err)
	}
	return entries, nil
}

// HasArchivedBefore checks for older history without loading it.
func (r *pgEntryRepo) HasArchivedBefore(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM log_entries
			WHERE user_id = @user_id AND is_archived AND archive_date < @day
		)`

	var exists bool
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"user_id": userID,
		"day":     pgtype.Date{Time: day, Valid: true},
	}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repo.EntryRepo.HasArchivedBefore: %w", err)
	}
	return exists, nil
}

// RecentCategories orders categories by their latest use.
func (r *pgEntryRepo) RecentCategories(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	const q = `
		SELECT category
		FROM log_entries
		WHERE user_id = @user_id AND category <> @uncategorized
		GROUP BY category
		ORDER BY max(created_at) DESC
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id":       userID,
		"uncategorized": domain.Uncategorized,
		"limit":         limit,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.EntryRepo.RecentCategories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("repo.EntryRepo.RecentCategories: rows: %w", err)
	}
	return categories, nil
}

// SetCategories writes every label in one round trip.
func (r *pgEntryRepo) SetCategories(ctx context.Context, userID uuid.UUID, categories map[uuid.UUID]string) error {
	if len(categories) == 0 {
		return nil
	}

	const q = `UPDATE log_entries SET category = $3 WHERE id = $1 AND user_id = $2`

	b := &pgx.Batch{}
	for id, category := range categories {
		b.Queue(q, id, userID, category)
	}

	br := r.db.SendBatch(ctx, b)
	defer br.Close()

	for range categories {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("repo.EntryRepo.SetCategories: %w", err)
		}
	}
	return nil
}

// ListAll returns the user's whole log, oldest first.
func (r *pgEntryRepo) ListAll(ctx context.Context, userID uuid.UUID) ([]domain.LogEntry, error) {
	const q = `
		SELECT ` + entryColumns + `
		FROM log_entries
		WHERE user_id = @user_id
		ORDER BY created_at`

	entries, err := r.list(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.EntryRepo.ListAll: %w", err)
	}
	return entries, nil
}

// Delete removes an entry owned by userID.
func (r *pgEntryRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const q = `DELETE FROM log_entries WHERE id = @id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.EntryRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.EntryRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// list runs q and scans every row. Always returns a non-nil slice on success.
func (r *pgEntryRepo) list(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.LogEntry, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.LogEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return entries, nil
}

// scanEntry maps a single database row into a domain.LogEntry.
// It handles the UUID and nullable archive_date conversions.
func scanEntry(s scanner) (domain.LogEntry, error) {
	var (
		e           domain.LogEntry
		id, userID  pgtype.UUID
		archiveDate pgtype.Date
	)

	err := s.Scan(&id, &userID, &e.Description, &e.StartTime, &e.EndTime,
		&e.Category, &e.IsArchived, &archiveDate, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LogEntry{}, domain.ErrNotFound
		}
		return domain.LogEntry{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.UserID = uuid.UUID(userID.Bytes)
	if archiveDate.Valid {
		d := domain.CivilDate(archiveDate.Time)
		e.ArchiveDate = &d
	}
	return e, nil
}
