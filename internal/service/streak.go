package service

import (
	"time"

	"github.com/pkordes/daylog/internal/domain"
)

// RecordCheckIn applies one check-in on the logical date day to u and reports
// whether the streak state changed.
//
//   - first check-in ever: streak 1
//   - same day as the last check-in: unchanged
//   - the day after the last check-in: streak + 1
//   - anything else, including a gap or a backdated day: streak 1
//
// LastCheckIn moves to day whenever the state changes. Callers persist
// Streak and LastCheckIn together, and only when changed is true.
func RecordCheckIn(u domain.User, day time.Time) (domain.User, bool) {
	day = domain.CivilDate(day)

	switch {
	case u.LastCheckIn == nil:
		u.Streak = 1
	case domain.DaysBetween(*u.LastCheckIn, day) == 0:
		return u, false
	case domain.DaysBetween(*u.LastCheckIn, day) == 1:
		u.Streak++
	default:
		u.Streak = 1
	}
	u.LastCheckIn = &day
	return u, true
}
