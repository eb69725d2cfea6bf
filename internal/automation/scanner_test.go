package automation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonflow/scheduling-service/internal/domain"
)

type fakeTimeProvider struct {
	now time.Time
}

func (f *fakeTimeProvider) Now() time.Time { return f.now }

type fakeAppointmentSource struct {
	reminders []*domain.Appointment
	followUps []*domain.Appointment

	remindersErr error
	markErr      error

	remindersMarked []int64
	followUpsMarked []int64
}

func (f *fakeAppointmentSource) GetDueReminders(_ context.Context, _, _ time.Time) ([]*domain.Appointment, error) {
	return f.reminders, f.remindersErr
}

func (f *fakeAppointmentSource) MarkReminderSent(_ context.Context, id int64, _ time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.remindersMarked = append(f.remindersMarked, id)
	return nil
}

func (f *fakeAppointmentSource) GetDueFollowUps(_ context.Context, _ time.Time) ([]*domain.Appointment, error) {
	return f.followUps, nil
}

func (f *fakeAppointmentSource) MarkFollowUpSent(_ context.Context, id int64, _ time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.followUpsMarked = append(f.followUpsMarked, id)
	return nil
}

func TestScanner_DispatchesReminders(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	source := &fakeAppointmentSource{
		reminders: []*domain.Appointment{
			{ID: 1, StaffID: 3, StartTime: now.Add(3 * time.Hour), Status: domain.StatusConfirmed},
			{ID: 2, StaffID: 3, StartTime: now.Add(5 * time.Hour), Status: domain.StatusConfirmed},
		},
	}

	dispatcher := NewDispatcher(noopLogger{}, nil)
	handler := &recordingHandler{name: "reminder"}
	dispatcher.Register(domain.TriggerAppointmentReminder, handler)

	scanner := NewScanner(source, dispatcher, &fakeTimeProvider{now: now}, noopLogger{})
	scanner.Scan(context.Background())
	dispatcher.Wait()

	assert.ElementsMatch(t, []int64{1, 2}, source.remindersMarked)

	events := handler.received()
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, domain.TriggerAppointmentReminder, e.Trigger)
		assert.Equal(t, now, e.OccurredAt)
	}
}

func TestScanner_DispatchesFollowUps(t *testing.T) {
	now := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	source := &fakeAppointmentSource{
		followUps: []*domain.Appointment{
			{ID: 7, EndTime: now.Add(-3 * time.Hour), Status: domain.StatusCompleted},
		},
	}

	dispatcher := NewDispatcher(noopLogger{}, nil)
	handler := &recordingHandler{name: "follow-up"}
	dispatcher.Register(domain.TriggerFollowUp, handler)

	scanner := NewScanner(source, dispatcher, &fakeTimeProvider{now: now}, noopLogger{})
	scanner.Scan(context.Background())
	dispatcher.Wait()

	assert.Equal(t, []int64{7}, source.followUpsMarked)

	events := handler.received()
	require.Len(t, events, 1)
	assert.Equal(t, int64(7), events[0].Appointment.ID)
}

func TestScanner_MarkFailureSkipsDispatch(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	source := &fakeAppointmentSource{
		reminders: []*domain.Appointment{
			{ID: 1, StartTime: now.Add(time.Hour), Status: domain.StatusConfirmed},
		},
		markErr: errors.New("db unavailable"),
	}

	dispatcher := NewDispatcher(noopLogger{}, nil)
	handler := &recordingHandler{name: "reminder"}
	dispatcher.Register(domain.TriggerAppointmentReminder, handler)

	scanner := NewScanner(source, dispatcher, &fakeTimeProvider{now: now}, noopLogger{})
	scanner.Scan(context.Background())
	dispatcher.Wait()

	// Отметка не встала - событие не отправляется, запись попадет в следующий проход
	assert.Empty(t, handler.received())
}

func TestScanner_SourceErrorDoesNotStopFollowUps(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	source := &fakeAppointmentSource{
		remindersErr: errors.New("db unavailable"),
		followUps: []*domain.Appointment{
			{ID: 4, EndTime: now.Add(-3 * time.Hour), Status: domain.StatusCompleted},
		},
	}

	dispatcher := NewDispatcher(noopLogger{}, nil)
	handler := &recordingHandler{name: "follow-up"}
	dispatcher.Register(domain.TriggerFollowUp, handler)

	scanner := NewScanner(source, dispatcher, &fakeTimeProvider{now: now}, noopLogger{})
	scanner.Scan(context.Background())
	dispatcher.Wait()

	assert.Len(t, handler.received(), 1)
}

func TestScanner_RunStopsOnContextCancel(t *testing.T) {
	source := &fakeAppointmentSource{}
	dispatcher := NewDispatcher(noopLogger{}, nil)
	scanner := NewScanner(source, dispatcher, &RealTimeProvider{}, noopLogger{}).
		WithIntervals(10*time.Millisecond, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		scanner.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scanner did not stop after context cancellation")
	}
}
