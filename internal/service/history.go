package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/daylog/internal/domain"
	"github.com/pkordes/daylog/internal/metrics"
	"github.com/pkordes/daylog/internal/repo"
	"github.com/pkordes/daylog/internal/stats"
)

// sweeper is satisfied by *EntryService.
type sweeper interface {
	Sweep(ctx context.Context, userID uuid.UUID) error
}

// HistoryService navigates archived entries in day or week windows.
type HistoryService struct {
	sweeper sweeper
	entries repo.EntryRepo
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewHistoryService constructs a HistoryService.
func NewHistoryService(sw sweeper, entries repo.EntryRepo, log *slog.Logger, m *metrics.Metrics) *HistoryService {
	return &HistoryService{sweeper: sw, entries: entries, log: log, metrics: m, now: time.Now}
}

// WithClock replaces the service clock. Tests use it to pin "now".
func (s *HistoryService) WithClock(now func() time.Time) *HistoryService {
	s.now = now
	return s
}

// Page returns the window p resolves to, the archived entries in it grouped
// by archive date with per-day stats, the totals over the window, and
// whether older history exists.
//
// The sweep runs first so entries from a day that has just ended show up.
func (s *HistoryService) Page(ctx context.Context, userID uuid.UUID, p domain.WindowParams) (domain.HistoryPage, error) {
	if err := s.sweeper.Sweep(ctx, userID); err != nil {
		return domain.HistoryPage{}, fmt.Errorf("service.HistoryService.Page: %w", err)
	}

	w := p.Resolve(domain.LogicalDate(s.now()))

	entries, err := s.entries.ListArchivedRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return domain.HistoryPage{}, fmt.Errorf("service.HistoryService.Page: %w", err)
	}
	hasOlder, err := s.entries.HasArchivedBefore(ctx, userID, w.OlderCutoff())
	if err != nil {
		return domain.HistoryPage{}, fmt.Errorf("service.HistoryService.Page: %w", err)
	}

	days := stats.GroupByArchiveDate(entries)
	perDay := make([]domain.DayStats, 0, len(days))
	for _, d := range days {
		reportWarnings(ctx, s.log, s.metrics, userID, d.Stats.Warnings)
		perDay = append(perDay, d.Stats)
	}

	return domain.HistoryPage{
		Window:   w,
		Days:     days,
		Totals:   stats.SumRange(perDay),
		HasOlder: hasOlder,
	}, nil
}
