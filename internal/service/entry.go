// Package service contains the business logic for the Daylog API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/daylog/internal/domain"
	"github.com/pkordes/daylog/internal/metrics"
	"github.com/pkordes/daylog/internal/repo"
)

// TodayView is the user's open day after the archive sweep.
type TodayView struct {
	Day      time.Time         // logical date of "now"
	Entries  []domain.LogEntry // active set, newest first
	User     domain.User
	Archived int64 // entries moved to history by this sweep
}

// EndOfDay reports the result of a manual end of day.
type EndOfDay struct {
	Day      time.Time
	Archived int64
}

// EntryService implements the archive state machine for log entries.
// Every write that depends on the user's current active set runs in one
// transaction that first locks the user's row, so two requests for the same
// user never interleave their read and write.
type EntryService struct {
	tx      repo.Transactor
	entries repo.EntryRepo
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewEntryService constructs an EntryService. entries is used for the reads
// and deletes that need no user lock.
func NewEntryService(tx repo.Transactor, entries repo.EntryRepo, log *slog.Logger, m *metrics.Metrics) *EntryService {
	return &EntryService{tx: tx, entries: entries, log: log, metrics: m, now: time.Now}
}

// WithClock replaces the service clock. Tests use it to pin "now".
func (s *EntryService) WithClock(now func() time.Time) *EntryService {
	s.now = now
	return s
}

// Create validates and persists a new active entry for e.UserID and records
// the streak check-in for the logical date of the creation time. The insert
// and the streak update commit together or not at all.
// Returns domain.ErrValidation before any write if a required field is blank.
func (s *EntryService) Create(ctx context.Context, e domain.LogEntry) (domain.LogEntry, domain.User, error) {
	if err := validateEntry(e); err != nil {
		return domain.LogEntry{}, domain.User{}, err
	}

	now := s.now()
	e.Description = strings.TrimSpace(e.Description)
	e.StartTime = strings.TrimSpace(e.StartTime)
	e.EndTime = strings.TrimSpace(e.EndTime)
	e.Category = domain.Uncategorized
	e.IsArchived = false
	e.ArchiveDate = nil
	e.CreatedAt = now

	var (
		created domain.LogEntry
		user    domain.User
	)
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		u, err := r.Users.GetForUpdate(ctx, e.UserID)
		if err != nil {
			return err
		}
		created, err = r.Entries.Create(ctx, e)
		if err != nil {
			return err
		}
		next, changed := RecordCheckIn(u, domain.LogicalDate(now))
		if changed {
			if err := r.Users.SaveStreak(ctx, u.ID, next.Streak, *next.LastCheckIn); err != nil {
				return err
			}
		}
		user = next
		return nil
	})
	if err != nil {
		return domain.LogEntry{}, domain.User{}, fmt.Errorf("service.EntryService.Create: %w", err)
	}

	s.metrics.Created()
	return created, user, nil
}

// Today runs the archive sweep and returns the remaining active set along
// with the user's streak and notes.
//
// Every active entry whose logical day is before today's logical date moves
// to history stamped with its own logical day. Running it again without the
// clock crossing 06:00 changes nothing.
func (s *EntryService) Today(ctx context.Context, userID uuid.UUID) (TodayView, error) {
	view := TodayView{Day: domain.LogicalDate(s.now())}

	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		u, err := r.Users.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		view.User = u
		view.Entries, view.Archived, err = sweep(ctx, r.Entries, userID, view.Day)
		return err
	})
	if err != nil {
		return TodayView{}, fmt.Errorf("service.EntryService.Today: %w", err)
	}

	if view.Archived > 0 {
		s.log.InfoContext(ctx, "archive sweep",
			slog.String("user_id", userID.String()),
			slog.Int64("archived", view.Archived),
		)
		s.metrics.Archived(metrics.ReasonSweep, view.Archived)
	}
	return view, nil
}

// Sweep runs the archive sweep without returning the active set.
func (s *EntryService) Sweep(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.Today(ctx, userID); err != nil {
		return fmt.Errorf("service.EntryService.Sweep: %w", err)
	}
	return nil
}

// EndDay archives every active entry under today's logical date and clears
// the quick note. The notebook is left alone.
//
// Unlike the sweep, every entry is stamped with today's date, including an
// entry still active from an earlier day that the sweep has not yet seen.
func (s *EntryService) EndDay(ctx context.Context, userID uuid.UUID) (EndOfDay, error) {
	res := EndOfDay{Day: domain.LogicalDate(s.now())}

	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		if _, err := r.Users.GetForUpdate(ctx, userID); err != nil {
			return err
		}
		n, err := r.Entries.ArchiveAllActive(ctx, userID, res.Day)
		if err != nil {
			return err
		}
		res.Archived = n
		return r.Users.SaveNote(ctx, userID, domain.QuickNote, "")
	})
	if err != nil {
		return EndOfDay{}, fmt.Errorf("service.EntryService.EndDay: %w", err)
	}

	s.log.InfoContext(ctx, "end of day",
		slog.String("user_id", userID.String()),
		slog.Int64("archived", res.Archived),
	)
	s.metrics.Archived(metrics.ReasonEndDay, res.Archived)
	return res, nil
}

// Delete removes an entry, active or archived, owned by userID.
// Returns domain.ErrNotFound if the entry does not exist and
// domain.ErrForbidden if it belongs to another user.
func (s *EntryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.EntryService.Delete: %w", err)
	}
	if e.UserID != userID {
		return fmt.Errorf("service.EntryService.Delete: %w: entry belongs to another user", domain.ErrForbidden)
	}
	if err := s.entries.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("service.EntryService.Delete: %w", err)
	}
	return nil
}

// sweep archives the stale part of the user's active set and returns the rest.
// It must run inside a transaction holding the user's row lock.
func sweep(ctx context.Context, entries repo.EntryRepo, userID uuid.UUID, today time.Time) ([]domain.LogEntry, int64, error) {
	all, err := entries.ListActive(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	active := make([]domain.LogEntry, 0, len(all))
	var stamps []domain.ArchiveStamp
	for _, e := range all {
		if day := e.LogicalDay(); day.Before(today) {
			stamps = append(stamps, domain.ArchiveStamp{ID: e.ID, Date: day})
			continue
		}
		active = append(active, e)
	}
	if len(stamps) == 0 {
		return active, 0, nil
	}

	n, err := entries.Archive(ctx, userID, stamps)
	if err != nil {
		return nil, 0, err
	}
	return active, n, nil
}

// validateEntry enforces the required fields of a new entry.
func validateEntry(e domain.LogEntry) error {
	var missing []string
	if strings.TrimSpace(e.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(e.StartTime) == "" {
		missing = append(missing, "start_time")
	}
	if strings.TrimSpace(e.EndTime) == "" {
		missing = append(missing, "end_time")
	}
	if e.UserID == uuid.Nil {
		missing = append(missing, "user")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", domain.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// reportWarnings logs and counts the clock strings BuildDay could not parse.
func reportWarnings(ctx context.Context, log *slog.Logger, m *metrics.Metrics, userID uuid.UUID, ws []domain.ParseWarning) {
	for _, w := range ws {
		log.WarnContext(ctx, "unparseable entry time",
			slog.String("user_id", userID.String()),
			slog.String("start_time", w.Start),
			slog.String("end_time", w.End),
		)
	}
	m.ParseWarning(len(ws))
}

// asCollaboratorError makes sure a collaborator failure carries an outcome.
func asCollaboratorError(op string, err error) error {
	var ce *domain.CollaboratorError
	if errors.As(err, &ce) {
		return ce
	}
	outcome := domain.OutcomeUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		outcome = domain.OutcomeTimeout
	}
	return &domain.CollaboratorError{Op: op, Outcome: outcome, Err: err}
}
