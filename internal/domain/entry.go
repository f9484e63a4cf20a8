// Package domain contains the core data types for the Daylog application.
// This package has no external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Uncategorized is the category of an entry the taxonomy collaborator has
// not labelled.
const Uncategorized = "Uncategorized"

// DeepWork is the category counted by the focus percentage.
const DeepWork = "Deep Work"

// LogEntry is a single timestamped activity.
//
// An entry is active (IsArchived false, ArchiveDate nil) while it belongs to
// the open day, and archived (IsArchived true, ArchiveDate set) once it has
// moved to history. Archived entries never become active again.
type LogEntry struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Description string
	StartTime   string // "15:04" or "15:04:05"
	EndTime     string
	Category    string
	IsArchived  bool
	ArchiveDate *time.Time // logical date, nil while active
	CreatedAt   time.Time
}

// LogicalDay returns the logical date the entry was created on.
func (e LogEntry) LogicalDay() time.Time {
	return LogicalDate(e.CreatedAt)
}

// ArchiveStamp moves one entry to history under Date.
type ArchiveStamp struct {
	ID   uuid.UUID
	Date time.Time
}
