package domain

import (
	"time"

	"github.com/salonflow/scheduling-service/pkg/timerange"
	"github.com/salonflow/scheduling-service/pkg/types"
)

// StaffSchedule is a recurring weekly availability window for one staff
// member. LocationID == nil means the entry applies at every location;
// an empty ServiceCategories list means every category. An entry with
// IsBlocked set marks the window explicitly unavailable and always wins
// over overlapping open entries. One-off blocks are expressed as entries
// with StartDate == EndDate.
type StaffSchedule struct {
	ID                int64
	StaffID           int64
	DayOfWeek         time.Weekday
	StartTime         types.TimeString
	EndTime           types.TimeString
	LocationID        *int64
	ServiceCategories []string
	StartDate         time.Time
	EndDate           *time.Time
	IsBlocked         bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppliesTo reports whether the entry is in effect for the given date,
// location and service category.
func (s *StaffSchedule) AppliesTo(date time.Time, locationID int64, serviceCategory string) bool {
	if s.DayOfWeek != date.Weekday() {
		return false
	}

	day := dateOnly(date)
	if day.Before(dateOnly(s.StartDate)) {
		return false
	}
	if s.EndDate != nil && day.After(dateOnly(*s.EndDate)) {
		return false
	}

	if s.LocationID != nil && *s.LocationID != locationID {
		return false
	}

	// Блокировки действуют независимо от категории услуги:
	// занятое время занято для всех
	if s.IsBlocked {
		return true
	}

	if len(s.ServiceCategories) == 0 {
		return true
	}
	for _, c := range s.ServiceCategories {
		if c == serviceCategory {
			return true
		}
	}
	return false
}

// Window materializes the entry's wall-clock window on the given date,
// in the date's location (timezone).
func (s *StaffSchedule) Window(date time.Time) (timerange.Range, error) {
	start, err := s.StartTime.At(date)
	if err != nil {
		return timerange.Range{}, err
	}
	end, err := s.EndTime.At(date)
	if err != nil {
		return timerange.Range{}, err
	}
	return timerange.New(start, end)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
