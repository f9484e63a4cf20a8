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
	"github.com/pkordes/daylog/internal/stats"
)

// Categorizer is the taxonomy collaborator. Implementations should return a
// *domain.CollaboratorError on failure.
type Categorizer interface {
	Categorize(ctx context.Context, req domain.CategorizeRequest) (domain.Categorization, error)
}

// todayReader is satisfied by *EntryService.
type todayReader interface {
	Today(ctx context.Context, userID uuid.UUID) (TodayView, error)
}

// Visualization is today's active set with its statistics.
// When categorization failed, Stats is computed from the categories the
// entries already had and Outcome says why.
type Visualization struct {
	Day                  time.Time
	Entries              []domain.LogEntry
	Stats                domain.DayStats
	CategorizationFailed bool
	Outcome              domain.CollaboratorOutcome
}

// CategoryService labels the active set through the taxonomy collaborator
// and builds today's statistics.
type CategoryService struct {
	today   todayReader
	tx      repo.Transactor
	entries repo.EntryRepo
	ai      Categorizer
	timeout time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewCategoryService constructs a CategoryService. timeout bounds every
// collaborator call.
func NewCategoryService(today todayReader, tx repo.Transactor, entries repo.EntryRepo, ai Categorizer, timeout time.Duration, log *slog.Logger, m *metrics.Metrics) *CategoryService {
	return &CategoryService{today: today, tx: tx, entries: entries, ai: ai, timeout: timeout, log: log, metrics: m}
}

// Categorize sweeps, then asks the collaborator to label every active entry
// and writes the labels in one transaction. Entries the collaborator leaves
// out are written as domain.Uncategorized. On any collaborator failure
// nothing is written and a *domain.CollaboratorError is returned.
func (s *CategoryService) Categorize(ctx context.Context, userID uuid.UUID) ([]domain.LogEntry, error) {
	view, err := s.today.Today(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.CategoryService.Categorize: %w", err)
	}
	entries, err := s.categorize(ctx, userID, view.Entries)
	if err != nil {
		return nil, fmt.Errorf("service.CategoryService.Categorize: %w", err)
	}
	return entries, nil
}

// Visualize sweeps, attempts categorization and returns today's statistics.
// A collaborator failure does not fail the call.
func (s *CategoryService) Visualize(ctx context.Context, userID uuid.UUID) (Visualization, error) {
	view, err := s.today.Today(ctx, userID)
	if err != nil {
		return Visualization{}, fmt.Errorf("service.CategoryService.Visualize: %w", err)
	}

	v := Visualization{Day: view.Day, Entries: view.Entries, Outcome: domain.OutcomeSuccess}
	entries, err := s.categorize(ctx, userID, view.Entries)
	var ce *domain.CollaboratorError
	switch {
	case errors.As(err, &ce):
		v.CategorizationFailed = true
		v.Outcome = ce.Outcome
	case err != nil:
		return Visualization{}, fmt.Errorf("service.CategoryService.Visualize: %w", err)
	default:
		v.Entries = entries
	}

	v.Stats = stats.BuildDay(v.Entries)
	reportWarnings(ctx, s.log, s.metrics, userID, v.Stats.Warnings)
	return v, nil
}

// categorize labels active and returns it with the new categories applied.
// An empty active set makes no collaborator call.
func (s *CategoryService) categorize(ctx context.Context, userID uuid.UUID, active []domain.LogEntry) ([]domain.LogEntry, error) {
	if len(active) == 0 {
		return active, nil
	}

	recent, err := s.entries.RecentCategories(ctx, userID, domain.MaxRecentCategories)
	if err != nil {
		return nil, err
	}

	labels, err := s.call(ctx, domain.CategorizeRequest{Entries: active, RecentCategories: recent})
	if err != nil {
		s.log.WarnContext(ctx, "categorization failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	updates := make(map[uuid.UUID]string, len(active))
	out := make([]domain.LogEntry, len(active))
	for i, e := range active {
		label := strings.TrimSpace(labels[e.ID])
		if label == "" {
			label = domain.Uncategorized
		}
		updates[e.ID] = label
		e.Category = label
		out[i] = e
	}

	err = s.tx.WithinTx(ctx, func(r repo.Repos) error {
		if _, err := r.Users.GetForUpdate(ctx, userID); err != nil {
			return err
		}
		return r.Entries.SetCategories(ctx, userID, updates)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// call runs the collaborator under the configured timeout and records the outcome.
func (s *CategoryService) call(ctx context.Context, req domain.CategorizeRequest) (domain.Categorization, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	labels, err := s.ai.Categorize(ctx, req)
	if err != nil {
		err = asCollaboratorError(domain.OpCategorize, err)
		s.metrics.Collaborator(domain.OpCategorize, string(outcomeOf(err)))
		return nil, err
	}
	if labels == nil {
		labels = domain.Categorization{}
	}
	s.metrics.Collaborator(domain.OpCategorize, string(domain.OutcomeSuccess))
	return labels, nil
}

// outcomeOf extracts the outcome from a collaborator error.
func outcomeOf(err error) domain.CollaboratorOutcome {
	var ce *domain.CollaboratorError
	if errors.As(err, &ce) {
		return ce.Outcome
	}
	return domain.OutcomeUnavailable
}
