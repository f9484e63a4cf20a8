package domain

import "time"

// ExportRow is a single row in the full-data export: one row per entry,
// active or archived, with its logical day and computed duration.
type ExportRow struct {
	EntryID     string
	Description string
	StartTime   string
	EndTime     string
	Minutes     float64
	Category    string

	// LogicalDay is the "2006-01-02" logical date the entry was created on.
	LogicalDay string
	// ArchiveDate is empty while the entry is active.
	ArchiveDate string
	CreatedAt   time.Time
}
