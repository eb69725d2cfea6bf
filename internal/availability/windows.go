// Package availability resolves recurring schedule entries into concrete
// open and blocked windows for a single staff member and day.
package availability

import (
	"time"

	"github.com/salonflow/scheduling-service/internal/domain"
	"github.com/salonflow/scheduling-service/pkg/timerange"
)

// DayWindows holds the resolved windows of one staff member for one date.
// Open is the union of applicable open entries with every applicable
// blocked entry already subtracted; OpenRaw is that union before the
// subtraction. Blocked keeps the normalized blocked intervals. The split
// lets callers distinguish "blocked" from "not working at all".
type DayWindows struct {
	Open    []timerange.Range
	OpenRaw []timerange.Range
	Blocked []timerange.Range
}

// Resolve applies the matching rule to all schedule entries of a staff
// member and materializes the windows for the given date. Open entries
// are unioned; blocked entries are subtracted in a second pass, so a
// blocked entry always wins over an overlapping open one regardless of
// declaration order. No applicable open entry means an empty result -
// the staff member simply does not work that day.
func Resolve(entries []*domain.StaffSchedule, date time.Time, locationID int64, serviceCategory string) (DayWindows, error) {
	open := make([]timerange.Range, 0, len(entries))
	blocked := make([]timerange.Range, 0)

	for _, entry := range entries {
		if !entry.AppliesTo(date, locationID, serviceCategory) {
			continue
		}

		window, err := entry.Window(date)
		if err != nil {
			return DayWindows{}, err
		}

		if entry.IsBlocked {
			blocked = append(blocked, window)
		} else {
			open = append(open, window)
		}
	}

	normalizedOpen := timerange.Normalize(open)
	normalizedBlocked := timerange.Normalize(blocked)

	return DayWindows{
		Open:    timerange.Subtract(normalizedOpen, normalizedBlocked),
		OpenRaw: normalizedOpen,
		Blocked: normalizedBlocked,
	}, nil
}

// Free subtracts occupied intervals from the open windows, producing the
// sorted disjoint intervals available for new appointments.
func (w DayWindows) Free(occupied []timerange.Range) []timerange.Range {
	return timerange.Subtract(w.Open, occupied)
}

// Covers reports whether r lies entirely inside one of the open windows.
func (w DayWindows) Covers(r timerange.Range) bool {
	for _, open := range w.Open {
		if open.Contains(r) {
			return true
		}
	}
	return false
}

// CoversRaw reports whether r lies inside an open window before blocked
// subtraction. False means the staff member does not work that interval.
func (w DayWindows) CoversRaw(r timerange.Range) bool {
	for _, open := range w.OpenRaw {
		if open.Contains(r) {
			return true
		}
	}
	return false
}

// IntersectsBlocked reports whether r touches any blocked interval.
func (w DayWindows) IntersectsBlocked(r timerange.Range) bool {
	for _, b := range w.Blocked {
		if b.Overlaps(r) {
			return true
		}
	}
	return false
}
