package domain

import "time"

// WindowMode selects the span of a history window.
type WindowMode string

const (
	ModeDay  WindowMode = "day"
	ModeWeek WindowMode = "week"
)

// WindowParams carries mode/offset values from the HTTP layer to the history
// service. Offset counts units (days or weeks) back from today; 0 is the
// current unit and positive values are clamped to 0.
type WindowParams struct {
	Mode   WindowMode
	Offset int
}

// NewWindowParams builds WindowParams from optional HTTP query params.
// Nil pointers fall back to day mode at offset 0. Unknown modes also fall
// back to day mode.
func NewWindowParams(mode *string, offset *int) WindowParams {
	p := WindowParams{Mode: ModeDay}
	if mode != nil && WindowMode(*mode) == ModeWeek {
		p.Mode = ModeWeek
	}
	if offset != nil && *offset < 0 {
		p.Offset = *offset
	}
	return p
}

// Window is a closed range of logical dates plus its navigation state.
type Window struct {
	Mode         WindowMode
	Offset       int
	Start        time.Time
	End          time.Time
	NextDisabled bool
}

// unitDays is the width of one navigation step.
func (m WindowMode) unitDays() int {
	if m == ModeWeek {
		return 7
	}
	return 1
}

// Resolve computes the window for p relative to the logical date today.
//
// Day mode covers the single date today+Offset. Week mode covers the Monday
// to Sunday span containing today+Offset*7. NextDisabled is set when moving
// one unit forward would put Start after today.
func (p WindowParams) Resolve(today time.Time) Window {
	today = CivilDate(today)
	w := Window{Mode: p.Mode, Offset: p.Offset}

	switch p.Mode {
	case ModeWeek:
		anchor := today.AddDate(0, 0, p.Offset*7)
		wd := int(anchor.Weekday())
		if wd == 0 {
			wd = 7 // Sunday closes the ISO week
		}
		w.Start = anchor.AddDate(0, 0, -(wd - 1))
		w.End = w.Start.AddDate(0, 0, 6)
	default:
		w.Start = today.AddDate(0, 0, p.Offset)
		w.End = w.Start
	}

	w.NextDisabled = w.Start.AddDate(0, 0, p.Mode.unitDays()).After(today)
	return w
}

// OlderCutoff is the date before which archived entries count as "older"
// history for the has_older flag.
func (w Window) OlderCutoff() time.Time {
	return w.Start.AddDate(0, 0, -1)
}

// HistoryPage is one window of history grouped by day.
type HistoryPage struct {
	Window   Window
	Days     []DayGroup
	Totals   RangeStats
	HasOlder bool
}
