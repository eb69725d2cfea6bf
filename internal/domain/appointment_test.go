package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/salonflow/scheduling-service/pkg/ptr"
	"github.com/salonflow/scheduling-service/pkg/types"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending to completed skips confirmation", StatusPending, StatusCompleted, false},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, true},
		{"confirmed to no_show", StatusConfirmed, StatusNoShow, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"completed to cancelled", StatusCompleted, StatusCancelled, true},
		{"no_show to cancelled corrects a mistaken mark", StatusNoShow, StatusCancelled, true},
		{"cancelled is terminal", StatusCancelled, StatusConfirmed, false},
		{"no_show cannot be reconfirmed", StatusNoShow, StatusConfirmed, false},
		{"pending to no_show", StatusPending, StatusNoShow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestOccupiesTime(t *testing.T) {
	occupying := []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted}
	for _, s := range occupying {
		a := Appointment{Status: s}
		assert.True(t, a.OccupiesTime(), "status %s must occupy time", s)
	}

	for _, s := range []AppointmentStatus{StatusCancelled, StatusNoShow} {
		a := Appointment{Status: s}
		assert.False(t, a.OccupiesTime(), "status %s must not occupy time", s)
	}
}

func TestAppointmentIntervals(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	a := Appointment{
		StartTime:     start,
		EndTime:       start.Add(60 * time.Minute),
		OccupiedFrom:  start.Add(-10 * time.Minute),
		OccupiedUntil: start.Add(75 * time.Minute),
	}

	assert.Equal(t, 60*time.Minute, a.VisibleInterval().Duration())
	assert.Equal(t, 85*time.Minute, a.OccupiedInterval().Duration())
	assert.True(t, a.OccupiedInterval().Contains(a.VisibleInterval()))
}

func TestScheduleAppliesTo(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday
	entry := StaffSchedule{
		StaffID:           1,
		DayOfWeek:         time.Monday,
		StartTime:         types.TimeString("09:00"),
		EndTime:           types.TimeString("17:00"),
		StartDate:         monday.AddDate(0, -1, 0),
		ServiceCategories: []string{"hair"},
	}

	t.Run("matches day, location and category", func(t *testing.T) {
		assert.True(t, entry.AppliesTo(monday, 1, "hair"))
	})

	t.Run("wrong weekday", func(t *testing.T) {
		assert.False(t, entry.AppliesTo(monday.AddDate(0, 0, 1), 1, "hair"))
	})

	t.Run("category mismatch", func(t *testing.T) {
		assert.False(t, entry.AppliesTo(monday, 1, "nails"))
	})

	t.Run("empty categories match everything", func(t *testing.T) {
		open := entry
		open.ServiceCategories = nil
		assert.True(t, open.AppliesTo(monday, 1, "nails"))
	})

	t.Run("location scoped entry", func(t *testing.T) {
		scoped := entry
		scoped.LocationID = ptr.Ptr(int64(2))
		assert.False(t, scoped.AppliesTo(monday, 1, "hair"))
		assert.True(t, scoped.AppliesTo(monday, 2, "hair"))
	})

	t.Run("date range bounds", func(t *testing.T) {
		bounded := entry
		bounded.EndDate = ptr.Ptr(monday.AddDate(0, 0, -7))
		assert.False(t, bounded.AppliesTo(monday, 1, "hair"))
	})

	t.Run("blocked entry ignores category", func(t *testing.T) {
		blocked := entry
		blocked.IsBlocked = true
		assert.True(t, blocked.AppliesTo(monday, 1, "nails"))
	})
}

func TestScheduleWindow(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	entry := StaffSchedule{
		DayOfWeek: time.Monday,
		StartTime: types.TimeString("09:00"),
		EndTime:   types.TimeString("17:00"),
	}

	w, err := entry.Window(monday)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC), w.End)
}

func TestServiceValidate(t *testing.T) {
	svc := Service{Name: "Haircut", Category: "hair", DurationMinutes: 60}
	assert.NoError(t, svc.Validate())

	svc.DurationMinutes = 0
	assert.ErrorIs(t, svc.Validate(), ErrInvalidServiceDefinition)

	svc.DurationMinutes = -30
	assert.ErrorIs(t, svc.Validate(), ErrInvalidServiceDefinition)

	svc.DurationMinutes = 60
	svc.BufferBeforeMinutes = -5
	assert.ErrorIs(t, svc.Validate(), ErrInvalidServiceDefinition)
}

func TestServiceRequiredMinutes(t *testing.T) {
	svc := Service{DurationMinutes: 60, BufferBeforeMinutes: 10, BufferAfterMinutes: 15}
	assert.Equal(t, 85, svc.RequiredMinutes())
}

func TestTriggerForTransition(t *testing.T) {
	trigger, ok := TriggerForTransition(StatusPending, StatusConfirmed)
	assert.True(t, ok)
	assert.Equal(t, TriggerBookingConfirmation, trigger)

	trigger, ok = TriggerForTransition(StatusConfirmed, StatusCancelled)
	assert.True(t, ok)
	assert.Equal(t, TriggerCancellation, trigger)

	trigger, ok = TriggerForTransition(StatusConfirmed, StatusNoShow)
	assert.True(t, ok)
	assert.Equal(t, TriggerNoShow, trigger)

	// Завершение само по себе не порождает триггер - follow_up отправляет сканер
	_, ok = TriggerForTransition(StatusConfirmed, StatusCompleted)
	assert.False(t, ok)
}
