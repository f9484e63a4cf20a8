// Package stats turns clock-time strings into minutes and folds log entries
// into per-day and per-range aggregates. Everything here is pure: parse
// failures are returned as warnings and never stop an aggregation.
package stats

import (
	"strings"
	"time"

	"github.com/pkordes/daylog/internal/domain"
)

// clockLayouts are tried in order when parsing a start or end time.
var clockLayouts = []string{"15:04", "15:04:05"}

const minutesPerDay = 24 * 60

// Duration is the result of Minutes. Warning is non-nil when either clock
// string could not be parsed, in which case Minutes is 0.
type Duration struct {
	Minutes float64
	Warning *domain.ParseWarning
}

// Minutes returns the elapsed minutes from start to end. An end earlier than
// start is taken to cross midnight.
func Minutes(start, end string) Duration {
	s, okS := parseClock(start)
	e, okE := parseClock(end)
	if !okS || !okE {
		return Duration{Warning: &domain.ParseWarning{Start: start, End: end}}
	}

	diff := e.Sub(s).Minutes()
	if diff < 0 {
		diff += minutesPerDay
	}
	return Duration{Minutes: diff}
}

func parseClock(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BuildDay aggregates entries that share one logical day.
//
// Entries without a category count as domain.Uncategorized. TopCategory is
// the category with the most minutes; ties go to the category seen first.
func BuildDay(entries []domain.LogEntry) domain.DayStats {
	st := domain.DayStats{
		CategoryMinutes: map[string]float64{},
		Categories:      []string{},
		EntryCount:      len(entries),
	}

	for _, e := range entries {
		d := Minutes(e.StartTime, e.EndTime)
		if d.Warning != nil {
			st.Warnings = append(st.Warnings, *d.Warning)
		}

		cat := e.Category
		if cat == "" {
			cat = domain.Uncategorized
		}
		if _, seen := st.CategoryMinutes[cat]; !seen {
			st.Categories = append(st.Categories, cat)
		}
		st.CategoryMinutes[cat] += d.Minutes
		st.TotalMinutes += d.Minutes
	}

	if st.TotalMinutes > 0 {
		st.FocusPct = int(st.CategoryMinutes[domain.DeepWork] / st.TotalMinutes * 100)
	}

	var best float64
	for _, cat := range st.Categories {
		if m := st.CategoryMinutes[cat]; st.TopCategory == "" || m > best {
			st.TopCategory, best = cat, m
		}
	}

	return st
}

// SumRange folds per-day results into range totals.
func SumRange(days []domain.DayStats) domain.RangeStats {
	var r domain.RangeStats
	for _, d := range days {
		r.TotalMinutes += d.TotalMinutes
		r.EntryCount += d.EntryCount
		r.DayCount++
	}
	return r
}

// GroupByArchiveDate splits entries already ordered by archive date into one
// DayGroup per date, attaching BuildDay to each. Active entries are skipped.
func GroupByArchiveDate(entries []domain.LogEntry) []domain.DayGroup {
	groups := []domain.DayGroup{}
	for _, e := range entries {
		if e.ArchiveDate == nil {
			continue
		}
		day := domain.CivilDate(*e.ArchiveDate)
		if n := len(groups); n > 0 && groups[n-1].Date.Equal(day) {
			groups[n-1].Entries = append(groups[n-1].Entries, e)
			continue
		}
		groups = append(groups, domain.DayGroup{Date: day, Entries: []domain.LogEntry{e}})
	}

	for i := range groups {
		groups[i].Stats = BuildDay(groups[i].Entries)
	}
	return groups
}
