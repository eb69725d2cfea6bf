package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salonflow/scheduling-service/internal/automation"
	"github.com/salonflow/scheduling-service/internal/domain"
	apptRepo "github.com/salonflow/scheduling-service/internal/infra/storage/appointment"
	"github.com/salonflow/scheduling-service/internal/service/appointments/models"
)

// Service сервис для работы с записями: чтение, переходы статусов,
// статус оплаты. Создание записи живет в отдельном usecase из-за
// транзакционной проверки конфликтов.
type Service struct {
	appointmentRepo AppointmentRepository
	dispatcher      Dispatcher
	slotsCache      SlotsInvalidator
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	dispatcher Dispatcher,
	slotsCache SlotsInvalidator,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		dispatcher:      dispatcher,
		slotsCache:      slotsCache,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет провайдер времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d", id)

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(appt), nil
}

// GetStaffAppointments получает записи мастера с гибкой фильтрацией
// Поддерживает фильтрацию по периоду, статусу и включению неактивных записей
func (s *Service) GetStaffAppointments(ctx context.Context, req *models.GetStaffAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetStaffAppointments: fetching appointments for staff=%d", req.StaffID)

	if req.StaffID <= 0 {
		return nil, fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetStaffAppointments: invalid filter for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: invalid status filter", ErrInvalidInput)
	}

	appts, err := s.appointmentRepo.GetByStaffWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetStaffAppointments: repository error for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: GetStaffAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetStaffAppointments: fetched %d appointments for staff=%d", len(appts), req.StaffID)
	return models.FromDomainAppointmentList(appts), nil
}

// GetClientAppointments получает историю записей клиента
// Опционально фильтрует по статусу
func (s *Service) GetClientAppointments(ctx context.Context, clientID int64, status *string) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetClientAppointments: fetching appointments for client=%d", clientID)

	if clientID <= 0 {
		return nil, fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	var domainStatus *domain.AppointmentStatus
	if status != nil {
		parsed, err := models.ToDomainAppointmentStatus(*status)
		if err != nil {
			s.logger.Warn("GetClientAppointments: invalid status=%s for client=%d", *status, clientID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &parsed
	}

	appts, err := s.appointmentRepo.GetByClientID(ctx, clientID, domainStatus)
	if err != nil {
		s.logger.Error("GetClientAppointments: repository error for client=%d: %v", clientID, err)
		return nil, fmt.Errorf("%w: GetClientAppointments - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointmentList(appts), nil
}

// UpdateStatus меняет статус записи по таблице переходов.
// Повторная установка текущего статуса - идемпотентный no-op: запись не
// меняется и событие автоматизации не отправляется повторно.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: updating appointment id=%d to status=%s", id, req.Status)

	newStatus, err := models.ToDomainAppointmentStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for appointment id=%d", req.Status, id)
		return nil, ErrInvalidStatus
	}

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("UpdateStatus: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	// Идемпотентный повтор
	if appt.Status == newStatus {
		s.logger.Info("UpdateStatus: appointment id=%d already has status=%s, no-op", id, newStatus)
		return models.FromDomainAppointment(appt), nil
	}

	if !domain.CanTransition(appt.Status, newStatus) {
		s.logger.Warn("UpdateStatus: transition %s -> %s is not allowed for appointment id=%d",
			appt.Status, newStatus, id)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, newStatus)
	}

	now := s.timeProvider.Now()

	if newStatus == domain.StatusCancelled {
		if err := s.appointmentRepo.Cancel(ctx, id, req.Reason, now); err != nil {
			s.logger.Error("UpdateStatus: failed to cancel appointment id=%d: %v", id, err)
			return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}
		appt.CancellationReason = req.Reason
		appt.CancelledAt = &now
	} else {
		if err := s.appointmentRepo.UpdateStatus(ctx, id, newStatus); err != nil {
			s.logger.Error("UpdateStatus: failed to update appointment id=%d: %v", id, err)
			return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}
	}

	oldStatus := appt.Status
	appt.Status = newStatus
	appt.UpdatedAt = now

	// Отмена и no-show освобождают интервал - сбрасываем кэш слотов
	s.invalidateSlots(ctx, appt, now)

	// Событие автоматизации после успешного перехода
	if trigger, ok := domain.TriggerForTransition(oldStatus, newStatus); ok {
		s.dispatch(trigger, appt, now)
	}

	s.logger.Info("UpdateStatus: appointment id=%d moved %s -> %s", id, oldStatus, newStatus)
	return models.FromDomainAppointment(appt), nil
}

// UpdatePaymentStatus меняет статус оплаты записи.
// Переход в paid отправляет триггер after_payment; статус записи
// при этом не меняется.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id int64, req *models.UpdatePaymentStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdatePaymentStatus: updating appointment id=%d to payment=%s", id, req.PaymentStatus)

	newStatus, err := models.ToDomainPaymentStatus(req.PaymentStatus)
	if err != nil {
		s.logger.Warn("UpdatePaymentStatus: invalid payment status=%s for appointment id=%d", req.PaymentStatus, id)
		return nil, ErrInvalidPaymentStatus
	}

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("UpdatePaymentStatus: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("UpdatePaymentStatus: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: UpdatePaymentStatus - repository error: %v", ErrInternal, err)
	}

	// Идемпотентный повтор
	if appt.PaymentStatus == newStatus {
		s.logger.Info("UpdatePaymentStatus: appointment id=%d already has payment=%s, no-op", id, newStatus)
		return models.FromDomainAppointment(appt), nil
	}

	if err := s.appointmentRepo.UpdatePaymentStatus(ctx, id, newStatus); err != nil {
		s.logger.Error("UpdatePaymentStatus: failed to update appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: UpdatePaymentStatus - repository error: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	appt.PaymentStatus = newStatus
	appt.UpdatedAt = now

	if newStatus == domain.PaymentPaid {
		s.dispatch(domain.TriggerAfterPayment, appt, now)
	}

	s.logger.Info("UpdatePaymentStatus: appointment id=%d payment set to %s", id, newStatus)
	return models.FromDomainAppointment(appt), nil
}

func (s *Service) invalidateSlots(ctx context.Context, appt *domain.Appointment, now time.Time) {
	if s.slotsCache == nil {
		return
	}

	date := time.Date(appt.StartTime.Year(), appt.StartTime.Month(), appt.StartTime.Day(), 0, 0, 0, 0, appt.StartTime.Location())
	if err := s.slotsCache.InvalidateStaffDay(ctx, appt.StaffID, date); err != nil {
		s.logger.Warn("invalidateSlots: failed to invalidate slots cache for staff=%d: %v", appt.StaffID, err)
	}
}

func (s *Service) dispatch(trigger domain.Trigger, appt *domain.Appointment, now time.Time) {
	if s.dispatcher == nil {
		return
	}

	s.dispatcher.Dispatch(automation.Event{
		Trigger:     trigger,
		Appointment: *appt,
		OccurredAt:  now,
	})
}
