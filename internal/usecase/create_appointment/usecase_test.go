package create_appointment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonflow/scheduling-service/internal/automation"
	"github.com/salonflow/scheduling-service/internal/domain"
	apptStorage "github.com/salonflow/scheduling-service/internal/infra/storage/appointment"
	"github.com/salonflow/scheduling-service/pkg/ptr"
	"github.com/salonflow/scheduling-service/pkg/timerange"
	"github.com/salonflow/scheduling-service/pkg/txmanager"
	"github.com/salonflow/scheduling-service/pkg/types"
)

// monday - понедельник 2026-03-02
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

type fakeScheduleRepo struct {
	entries []*domain.StaffSchedule
}

func (f *fakeScheduleRepo) GetForDate(_ context.Context, _ int64, _ time.Time) ([]*domain.StaffSchedule, error) {
	return f.entries, nil
}

type fakeAppointmentRepo struct {
	staffRanges []timerange.Range
	roomRanges  []timerange.Range
	createErr   error

	created []*domain.Appointment
}

func (f *fakeAppointmentRepo) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	appt.ID = int64(len(f.created) + 1)
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = appt.CreatedAt
	f.created = append(f.created, appt)
	return appt, nil
}

func (f *fakeAppointmentRepo) GetOccupiedRanges(_ context.Context, filter apptStorage.OccupancyFilter) ([]timerange.Range, error) {
	if filter.RoomID != nil && filter.StaffID == nil {
		return f.roomRanges, nil
	}
	return f.staffRanges, nil
}

type fakeCatalogRepo struct {
	service    *domain.Service
	staff      *domain.StaffMember
	room       *domain.Room
	location   *domain.Location
	canPerform bool
}

func (f *fakeCatalogRepo) GetService(_ context.Context, _ int64) (*domain.Service, error) {
	if f.service == nil {
		return nil, assert.AnError
	}
	return f.service, nil
}

func (f *fakeCatalogRepo) GetStaff(_ context.Context, _ int64) (*domain.StaffMember, error) {
	if f.staff == nil {
		return nil, assert.AnError
	}
	return f.staff, nil
}

func (f *fakeCatalogRepo) GetRoom(_ context.Context, _ int64) (*domain.Room, error) {
	if f.room == nil {
		return nil, assert.AnError
	}
	return f.room, nil
}

func (f *fakeCatalogRepo) GetLocation(_ context.Context, _ int64) (*domain.Location, error) {
	if f.location == nil {
		return nil, assert.AnError
	}
	return f.location, nil
}

func (f *fakeCatalogRepo) StaffCanPerform(_ context.Context, _, _ int64) (bool, error) {
	return f.canPerform, nil
}

type fakeSettingsRepo struct {
	settings *domain.BookingSettings
}

func (f *fakeSettingsRepo) GetForLocation(_ context.Context, _ int64) (*domain.BookingSettings, error) {
	return f.settings, nil
}

type fakeTxManager struct {
	err error
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

type fakeDispatcher struct {
	events []automation.Event
}

func (f *fakeDispatcher) Dispatch(event automation.Event) {
	f.events = append(f.events, event)
}

type fakeInvalidator struct {
	calls []int64
}

func (f *fakeInvalidator) InvalidateStaffDay(_ context.Context, staffID int64, _ time.Time) error {
	f.calls = append(f.calls, staffID)
	return nil
}

type fakeTimeProvider struct {
	now time.Time
}

func (f *fakeTimeProvider) Now() time.Time { return f.now }

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

type testEnv struct {
	scheduleRepo    *fakeScheduleRepo
	appointmentRepo *fakeAppointmentRepo
	catalogRepo     *fakeCatalogRepo
	txManager       *fakeTxManager
	dispatcher      *fakeDispatcher
	invalidator     *fakeInvalidator
	uc              *UseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		scheduleRepo: &fakeScheduleRepo{entries: []*domain.StaffSchedule{
			{
				ID:        1,
				StaffID:   3,
				DayOfWeek: time.Monday,
				StartTime: mustTime(t, "09:00"),
				EndTime:   mustTime(t, "17:00"),
				StartDate: monday.AddDate(-1, 0, 0),
			},
		}},
		appointmentRepo: &fakeAppointmentRepo{},
		catalogRepo: &fakeCatalogRepo{
			service: &domain.Service{
				ID:              11,
				Name:            "Стрижка",
				Category:        "hair",
				DurationMinutes: 60,
				Active:          true,
			},
			staff:      &domain.StaffMember{ID: 3, Name: "Анна", Active: true},
			room:       &domain.Room{ID: 4, LocationID: 1, Name: "Кабинет 4"},
			location:   &domain.Location{ID: 1, Name: "Центр", Timezone: "UTC"},
			canPerform: true,
		},
		txManager:   &fakeTxManager{},
		dispatcher:  &fakeDispatcher{},
		invalidator: &fakeInvalidator{},
	}

	env.uc = NewUseCase(
		env.scheduleRepo,
		env.appointmentRepo,
		env.catalogRepo,
		&fakeSettingsRepo{settings: domain.DefaultBookingSettings()},
		env.txManager,
		env.dispatcher,
		env.invalidator,
		nil,
		noopLogger{},
	).WithTimeProvider(&fakeTimeProvider{now: monday.AddDate(0, 0, -1)})

	return env
}

func mustTime(t *testing.T, s string) types.TimeString {
	t.Helper()
	ts, err := types.NewTimeStringFromString(s)
	require.NoError(t, err)
	return ts
}

func validRequest() *Request {
	return &Request{
		ClientID:   7,
		StaffID:    3,
		ServiceID:  11,
		LocationID: 1,
		StartTime:  monday.Add(10 * time.Hour),
	}
}

func TestExecute_CreatesAppointment(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, monday.Add(10*time.Hour), resp.StartTime)
	assert.Equal(t, monday.Add(11*time.Hour), resp.EndTime)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, string(domain.PaymentUnpaid), resp.PaymentStatus)

	// Без буферов занятая зона совпадает с видимым интервалом
	require.Len(t, env.appointmentRepo.created, 1)
	created := env.appointmentRepo.created[0]
	assert.Equal(t, created.StartTime, created.OccupiedFrom)
	assert.Equal(t, created.EndTime, created.OccupiedUntil)

	// Кэш слотов сброшен, событие подтверждения отправлено
	assert.Equal(t, []int64{3}, env.invalidator.calls)
	require.Len(t, env.dispatcher.events, 1)
	assert.Equal(t, domain.TriggerBookingConfirmation, env.dispatcher.events[0].Trigger)
}

func TestExecute_BuffersWidenOccupiedZone(t *testing.T) {
	env := newTestEnv(t)
	env.catalogRepo.service.BufferBeforeMinutes = 10
	env.catalogRepo.service.BufferAfterMinutes = 15

	_, err := env.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	created := env.appointmentRepo.created[0]
	assert.Equal(t, monday.Add(10*time.Hour), created.StartTime)
	assert.Equal(t, monday.Add(11*time.Hour), created.EndTime)
	assert.Equal(t, monday.Add(9*time.Hour+50*time.Minute), created.OccupiedFrom)
	assert.Equal(t, monday.Add(11*time.Hour+15*time.Minute), created.OccupiedUntil)
}

func TestExecute_OutsideSchedule(t *testing.T) {
	env := newTestEnv(t)

	req := validRequest()
	req.StartTime = monday.Add(18 * time.Hour)

	_, err := env.uc.Execute(context.Background(), req)
	conflictErr, ok := AsConflictError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonOutsideSchedule, conflictErr.Reason)
	assert.Empty(t, env.dispatcher.events)
}

func TestExecute_BlockedWindow(t *testing.T) {
	env := newTestEnv(t)
	env.scheduleRepo.entries = append(env.scheduleRepo.entries, &domain.StaffSchedule{
		ID:        2,
		StaffID:   3,
		DayOfWeek: time.Monday,
		StartTime: mustTime(t, "12:00"),
		EndTime:   mustTime(t, "13:00"),
		StartDate: monday,
		EndDate:   ptr.Ptr(monday),
		IsBlocked: true,
	})

	req := validRequest()
	req.StartTime = monday.Add(12*time.Hour + 30*time.Minute)

	_, err := env.uc.Execute(context.Background(), req)
	conflictErr, ok := AsConflictError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonBlocked, conflictErr.Reason)
}

func TestExecute_StaffConflict(t *testing.T) {
	env := newTestEnv(t)
	env.appointmentRepo.staffRanges = []timerange.Range{
		{Start: monday.Add(10 * time.Hour), End: monday.Add(11 * time.Hour)},
	}

	_, err := env.uc.Execute(context.Background(), validRequest())
	conflictErr, ok := AsConflictError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonStaffConflict, conflictErr.Reason)
	assert.Empty(t, env.appointmentRepo.created)
}

func TestExecute_RoomConflict(t *testing.T) {
	env := newTestEnv(t)
	env.catalogRepo.service.RoomID = ptr.Ptr(int64(4))
	env.appointmentRepo.roomRanges = []timerange.Range{
		{Start: monday.Add(10*time.Hour + 30*time.Minute), End: monday.Add(11*time.Hour + 30*time.Minute)},
	}

	_, err := env.uc.Execute(context.Background(), validRequest())
	conflictErr, ok := AsConflictError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonRoomConflict, conflictErr.Reason)
}

// Гонка двух запросов: наша проверка прошла, но вставка уперлась в
// exclusion-констрейнт - превращается в staff_conflict
func TestExecute_ExclusionConstraintMapsToStaffConflict(t *testing.T) {
	env := newTestEnv(t)
	env.appointmentRepo.createErr = apptStorage.ErrStaffOverlap

	_, err := env.uc.Execute(context.Background(), validRequest())
	conflictErr, ok := AsConflictError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonStaffConflict, conflictErr.Reason)
}

func TestExecute_RetriesExhausted(t *testing.T) {
	env := newTestEnv(t)
	env.txManager.err = fmt.Errorf("%w: still conflicting after 3 attempts", txmanager.ErrRetryExhausted)

	_, err := env.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.Empty(t, env.dispatcher.events)
}

func TestExecute_MinNoticeEnforced(t *testing.T) {
	env := newTestEnv(t)
	env.uc = env.uc.WithTimeProvider(&fakeTimeProvider{now: monday.Add(9*time.Hour + 45*time.Minute)})

	settings := domain.DefaultBookingSettings()
	settings.MinNoticeMinutes = 30
	env.uc.settingsRepo = &fakeSettingsRepo{settings: settings}

	_, err := env.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrTooLateToBook)
}

func TestExecute_InvalidInput(t *testing.T) {
	env := newTestEnv(t)

	req := validRequest()
	req.ClientID = 0

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
