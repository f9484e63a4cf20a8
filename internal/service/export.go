package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/daylog/internal/domain"
	"github.com/pkordes/daylog/internal/metrics"
	"github.com/pkordes/daylog/internal/repo"
	"github.com/pkordes/daylog/internal/stats"
)

// ExportService assembles a full flat export of a user's entries.
type ExportService struct {
	sweeper sweeper
	entries repo.EntryRepo
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewExportService constructs an ExportService. The sweep runs before every
// export so entries from ended days carry their archive date.
func NewExportService(sw sweeper, entries repo.EntryRepo, log *slog.Logger, m *metrics.Metrics) *ExportService {
	return &ExportService{sweeper: sw, entries: entries, log: log, metrics: m}
}

// Export returns one ExportRow per entry, active and archived, oldest first.
// Entries with unparseable times export 0 minutes and are reported as parse
// warnings.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ExportService) Export(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error) {
	if err := s.sweeper.Sweep(ctx, userID); err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	entries, err := s.entries.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(entries))
	var warnings []domain.ParseWarning
	for _, e := range entries {
		d := stats.Minutes(e.StartTime, e.EndTime)
		if d.Warning != nil {
			warnings = append(warnings, *d.Warning)
		}
		row := domain.ExportRow{
			EntryID:     e.ID.String(),
			Description: e.Description,
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
			Minutes:     d.Minutes,
			Category:    e.Category,
			LogicalDay:  e.LogicalDay().Format(domain.DateLayout),
			CreatedAt:   e.CreatedAt,
		}
		if e.ArchiveDate != nil {
			row.ArchiveDate = e.ArchiveDate.Format(domain.DateLayout)
		}
		rows = append(rows, row)
	}
	reportWarnings(ctx, s.log, s.metrics, userID, warnings)
	return rows, nil
}
