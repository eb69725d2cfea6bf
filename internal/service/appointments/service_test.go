package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonflow/scheduling-service/internal/automation"
	"github.com/salonflow/scheduling-service/internal/domain"
	apptRepo "github.com/salonflow/scheduling-service/internal/infra/storage/appointment"
	"github.com/salonflow/scheduling-service/internal/service/appointments/models"
	"github.com/salonflow/scheduling-service/pkg/ptr"
)

type fakeRepo struct {
	appt *domain.Appointment

	statusUpdates  []domain.AppointmentStatus
	cancels        int
	paymentUpdates []domain.PaymentStatus
}

func (f *fakeRepo) GetByID(_ context.Context, _ int64) (*domain.Appointment, error) {
	if f.appt == nil {
		return nil, apptRepo.ErrAppointmentNotFound
	}
	appt := *f.appt
	return &appt, nil
}

func (f *fakeRepo) GetByStaffWithFilter(_ context.Context, _ domain.StaffAppointmentsFilter) ([]*domain.Appointment, error) {
	if f.appt == nil {
		return []*domain.Appointment{}, nil
	}
	return []*domain.Appointment{f.appt}, nil
}

func (f *fakeRepo) GetByClientID(_ context.Context, _ int64, _ *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	if f.appt == nil {
		return []*domain.Appointment{}, nil
	}
	return []*domain.Appointment{f.appt}, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, _ int64, status domain.AppointmentStatus) error {
	f.statusUpdates = append(f.statusUpdates, status)
	f.appt.Status = status
	return nil
}

func (f *fakeRepo) Cancel(_ context.Context, _ int64, reason *string, cancelledAt time.Time) error {
	f.cancels++
	f.appt.Status = domain.StatusCancelled
	f.appt.CancellationReason = reason
	f.appt.CancelledAt = &cancelledAt
	return nil
}

func (f *fakeRepo) UpdatePaymentStatus(_ context.Context, _ int64, status domain.PaymentStatus) error {
	f.paymentUpdates = append(f.paymentUpdates, status)
	f.appt.PaymentStatus = status
	return nil
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

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func pendingAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:            42,
		ClientID:      7,
		StaffID:       3,
		ServiceID:     11,
		LocationID:    1,
		StartTime:     testNow.Add(24 * time.Hour),
		EndTime:       testNow.Add(25 * time.Hour),
		OccupiedFrom:  testNow.Add(24 * time.Hour),
		OccupiedUntil: testNow.Add(25 * time.Hour),
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentUnpaid,
	}
}

func newTestService(repo *fakeRepo) (*Service, *fakeDispatcher, *fakeInvalidator) {
	dispatcher := &fakeDispatcher{}
	invalidator := &fakeInvalidator{}
	svc := NewService(repo, dispatcher, invalidator, noopLogger{}).
		WithTimeProvider(&fakeTimeProvider{now: testNow})
	return svc, dispatcher, invalidator
}

func TestUpdateStatus_PendingToConfirmed(t *testing.T) {
	repo := &fakeRepo{appt: pendingAppointment()}
	svc, dispatcher, _ := newTestService(repo)

	resp, err := svc.UpdateStatus(context.Background(), 42, &models.UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, []domain.AppointmentStatus{domain.StatusConfirmed}, repo.statusUpdates)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, domain.TriggerBookingConfirmation, dispatcher.events[0].Trigger)
	assert.Equal(t, int64(42), dispatcher.events[0].Appointment.ID)
}

// Повторная установка текущего статуса - no-op без повторного события
func TestUpdateStatus_IdempotentRepeat(t *testing.T) {
	appt := pendingAppointment()
	appt.Status = domain.StatusConfirmed
	repo := &fakeRepo{appt: appt}
	svc, dispatcher, _ := newTestService(repo)

	resp, err := svc.UpdateStatus(context.Background(), 42, &models.UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)

	assert.Empty(t, repo.statusUpdates)
	assert.Empty(t, dispatcher.events)
}

func TestUpdateStatus_CancellationFreesInterval(t *testing.T) {
	appt := pendingAppointment()
	appt.Status = domain.StatusConfirmed
	repo := &fakeRepo{appt: appt}
	svc, dispatcher, invalidator := newTestService(repo)

	reason := "клиент попросил отменить"
	resp, err := svc.UpdateStatus(context.Background(), 42, &models.UpdateStatusRequest{
		Status: "cancelled",
		Reason: &reason,
	})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, 1, repo.cancels)
	require.NotNil(t, resp.CancellationReason)
	assert.Equal(t, reason, *resp.CancellationReason)

	// Кэш слотов мастера сброшен - интервал снова доступен
	assert.Equal(t, []int64{3}, invalidator.calls)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, domain.TriggerCancellation, dispatcher.events[0].Trigger)
}

func TestUpdateStatus_NoShow(t *testing.T) {
	appt := pendingAppointment()
	appt.Status = domain.StatusConfirmed
	repo := &fakeRepo{appt: appt}
	svc, dispatcher, _ := newTestService(repo)

	_, err := svc.UpdateStatus(context.Background(), 42, &models.UpdateStatusRequest{Status: "no_show"})
	require.NoError(t, err)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, domain.TriggerNoShow, dispatcher.events[0].Trigger)
}

// Завершение записи не отправляет прямого события: follow_up отправит
// периодический сканер
func TestUpdateStatus_CompletionEmitsNoDirectTrigger(t *testing.T) {
	appt := pendingAppointment()
	appt.Status = domain.StatusConfirmed
	repo := &fakeRepo{appt: appt}
	svc, dispatcher, _ := newTestService(repo)

	_, err := svc.UpdateStatus(context.Background(), 42, &models.UpdateStatusRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Empty(t, dispatcher.events)
}

func TestUpdateStatus_ForbiddenTransition(t *testing.T) {
	appt := pendingAppointment()
	appt.Status = domain.StatusCancelled
	repo := &fakeRepo{appt: appt}
	svc, dispatcher, _ := newTestService(repo)

	_, err := svc.UpdateStatus(context.Background(), 42, &models.UpdateStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, repo.statusUpdates)
	assert.Empty(t, dispatcher.events)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	repo := &fakeRepo{appt: pendingAppointment()}
	svc, _, _ := newTestService(repo)

	_, err := svc.UpdateStatus(context.Background(), 42, &models.UpdateStatusRequest{Status: "postponed"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc, _, _ := newTestService(&fakeRepo{})

	_, err := svc.UpdateStatus(context.Background(), 99, &models.UpdateStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestUpdatePaymentStatus_PaidEmitsAfterPayment(t *testing.T) {
	appt := pendingAppointment()
	appt.Status = domain.StatusConfirmed
	repo := &fakeRepo{appt: appt}
	svc, dispatcher, _ := newTestService(repo)

	resp, err := svc.UpdatePaymentStatus(context.Background(), 42, &models.UpdatePaymentStatusRequest{PaymentStatus: "paid"})
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.PaymentStatus)
	// Статус записи не изменился
	assert.Equal(t, "confirmed", resp.Status)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, domain.TriggerAfterPayment, dispatcher.events[0].Trigger)
}

// Повторное подтверждение оплаты не дублирует событие
func TestUpdatePaymentStatus_IdempotentRepeat(t *testing.T) {
	appt := pendingAppointment()
	appt.PaymentStatus = domain.PaymentPaid
	repo := &fakeRepo{appt: appt}
	svc, dispatcher, _ := newTestService(repo)

	_, err := svc.UpdatePaymentStatus(context.Background(), 42, &models.UpdatePaymentStatusRequest{PaymentStatus: "paid"})
	require.NoError(t, err)
	assert.Empty(t, repo.paymentUpdates)
	assert.Empty(t, dispatcher.events)
}

func TestUpdatePaymentStatus_RefundDoesNotEmit(t *testing.T) {
	appt := pendingAppointment()
	appt.PaymentStatus = domain.PaymentPaid
	repo := &fakeRepo{appt: appt}
	svc, dispatcher, _ := newTestService(repo)

	_, err := svc.UpdatePaymentStatus(context.Background(), 42, &models.UpdatePaymentStatusRequest{PaymentStatus: "refunded"})
	require.NoError(t, err)
	assert.Equal(t, []domain.PaymentStatus{domain.PaymentRefunded}, repo.paymentUpdates)
	assert.Empty(t, dispatcher.events)
}

func TestGetStaffAppointments_InvalidStatusFilter(t *testing.T) {
	svc, _, _ := newTestService(&fakeRepo{appt: pendingAppointment()})

	_, err := svc.GetStaffAppointments(context.Background(), &models.GetStaffAppointmentsRequest{
		StaffID: 3,
		Status:  ptr.Ptr("postponed"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _, _ := newTestService(&fakeRepo{})

	_, err := svc.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}
