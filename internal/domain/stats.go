package domain

import "time"

// DayStats is the aggregate of all entries sharing one logical day.
type DayStats struct {
	TotalMinutes float64
	// CategoryMinutes maps each category to its accumulated minutes.
	CategoryMinutes map[string]float64
	// Categories lists the keys of CategoryMinutes in first-seen order.
	Categories  []string
	FocusPct    int
	TopCategory string // empty when there are no entries
	EntryCount  int
	// Warnings collects clock strings that could not be parsed. Those entries
	// contribute zero minutes.
	Warnings []ParseWarning
}

// ParseWarning describes an entry whose start or end time could not be parsed.
type ParseWarning struct {
	Start string
	End   string
}

// RangeStats folds several DayStats together.
type RangeStats struct {
	TotalMinutes float64
	DayCount     int
	EntryCount   int
}

// DayGroup is one logical day of history with its entries and stats.
type DayGroup struct {
	Date    time.Time
	Entries []LogEntry
	Stats   DayStats
}
