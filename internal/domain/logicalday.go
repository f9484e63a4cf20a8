package domain

import "time"

// DayBoundaryHour is the hour at which a new logical day starts.
// Activity between midnight and this hour belongs to the previous day.
const DayBoundaryHour = 6

// DateLayout is the wire and storage format of a logical date.
const DateLayout = "2006-01-02"

// LogicalDate returns the logical day t belongs to, as midnight UTC of that
// calendar date. The hour is read in t's own location.
//
// This is the only place the day boundary rule is implemented.
func LogicalDate(t time.Time) time.Time {
	y, m, d := t.Date()
	if t.Hour() < DayBoundaryHour {
		d--
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CivilDate normalizes t to midnight UTC of its calendar date without
// applying the day boundary. Use it for dates that are already logical,
// such as values read back from a DATE column.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b.
// Both arguments must be logical dates.
func DaysBetween(a, b time.Time) int {
	return int(CivilDate(b).Sub(CivilDate(a)).Hours() / 24)
}
