package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salonflow/scheduling-service/internal/availability"
	"github.com/salonflow/scheduling-service/internal/domain"
	apptStorage "github.com/salonflow/scheduling-service/internal/infra/storage/appointment"
	"github.com/salonflow/scheduling-service/pkg/ptr"
	"github.com/salonflow/scheduling-service/pkg/timerange"
	"github.com/salonflow/scheduling-service/pkg/txmanager"
)

// UseCase use case для создания записи
type UseCase struct {
	scheduleRepo    ScheduleRepository
	appointmentRepo AppointmentRepository
	catalogRepo     CatalogRepository
	settingsRepo    SettingsRepository
	txManager       TransactionManager
	dispatcher      Dispatcher
	slotsCache      SlotsInvalidator
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	scheduleRepo ScheduleRepository,
	appointmentRepo AppointmentRepository,
	catalogRepo CatalogRepository,
	settingsRepo SettingsRepository,
	txManager TransactionManager,
	dispatcher Dispatcher,
	slotsCache SlotsInvalidator,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		scheduleRepo:    scheduleRepo,
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
		settingsRepo:    settingsRepo,
		txManager:       txManager,
		dispatcher:      dispatcher,
		slotsCache:      slotsCache,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет провайдер времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания записи.
// Проверка доступности и вставка выполняются в сериализуемой транзакции;
// exclusion-констрейнты БД остаются второй линией защиты от двойного
// бронирования.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: client=%d, staff=%d, service=%d, location=%d, start=%s",
		req.ClientID, req.StaffID, req.ServiceID, req.LocationID, req.StartTime.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		uc.incMetric("invalid_input")
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем филиал и приводим время к его часовому поясу
	location, err := uc.catalogRepo.GetLocation(ctx, req.LocationID)
	if err != nil {
		uc.logger.Warn("CreateAppointment: location id=%d not found: %v", req.LocationID, err)
		uc.incMetric("error")
		return nil, ErrLocationNotFound
	}

	loc, err := time.LoadLocation(location.Timezone)
	if err != nil {
		uc.logger.Error("CreateAppointment: invalid timezone %q for location id=%d: %v",
			location.Timezone, req.LocationID, err)
		uc.incMetric("error")
		return nil, fmt.Errorf("%w: invalid location timezone: %v", ErrInternal, err)
	}

	startTime := req.StartTime.In(loc)
	date := time.Date(startTime.Year(), startTime.Month(), startTime.Day(), 0, 0, 0, 0, loc)

	// 4. Получаем услугу
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		uc.logger.Warn("CreateAppointment: service id=%d not found: %v", req.ServiceID, err)
		uc.incMetric("error")
		return nil, ErrServiceNotFound
	}
	if !service.Active {
		uc.logger.Warn("CreateAppointment: service id=%d is inactive", req.ServiceID)
		uc.incMetric("error")
		return nil, ErrServiceInactive
	}

	// 5. Получаем мастера и проверяем, что он оказывает услугу
	if _, err := uc.catalogRepo.GetStaff(ctx, req.StaffID); err != nil {
		uc.logger.Warn("CreateAppointment: staff id=%d not found: %v", req.StaffID, err)
		uc.incMetric("error")
		return nil, ErrStaffNotFound
	}

	canPerform, err := uc.catalogRepo.StaffCanPerform(ctx, req.StaffID, req.ServiceID)
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to check staff services: %v", err)
		uc.incMetric("error")
		return nil, fmt.Errorf("%w: failed to check staff services: %v", ErrInternal, err)
	}
	if !canPerform {
		uc.logger.Warn("CreateAppointment: staff id=%d does not provide service id=%d",
			req.StaffID, req.ServiceID)
		uc.incMetric("error")
		return nil, ErrServiceNotProvided
	}

	// 6. Определяем кабинет: из запроса или из требования услуги
	roomID := req.RoomID
	if roomID == nil {
		roomID = service.RoomID
	}
	if roomID != nil {
		if _, err := uc.catalogRepo.GetRoom(ctx, *roomID); err != nil {
			uc.logger.Warn("CreateAppointment: room id=%d not found: %v", *roomID, err)
			uc.incMetric("error")
			return nil, ErrRoomNotFound
		}
	}

	// 7. Настройки бронирования и проверка времени
	settings, err := uc.settingsRepo.GetForLocation(ctx, req.LocationID)
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to get booking settings: %v", err)
		uc.incMetric("error")
		return nil, fmt.Errorf("%w: failed to get booking settings: %v", ErrInternal, err)
	}

	if err := validateTiming(startTime, now.In(loc), settings); err != nil {
		uc.logger.Warn("CreateAppointment: timing validation failed: %v", err)
		uc.incMetric("invalid_input")
		return nil, err
	}

	// 8. Видимый интервал услуги и полная занятая зона с буферами
	visible := timerange.Range{
		Start: startTime,
		End:   startTime.Add(time.Duration(service.DurationMinutes) * time.Minute),
	}
	occupiedZone := visible.Pad(
		time.Duration(service.BufferBeforeMinutes)*time.Minute,
		time.Duration(service.BufferAfterMinutes)*time.Minute,
	)

	var result *domain.Appointment

	// 9. Проверка доступности и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 9.1. Разворачиваем расписание мастера на дату записи
		entries, err := uc.scheduleRepo.GetForDate(txCtx, req.StaffID, date)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get schedule entries: %v", err)
			return fmt.Errorf("%w: failed to get schedule entries: %v", ErrInternal, err)
		}

		windows, err := availability.Resolve(entries, date, req.LocationID, service.Category)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to resolve schedule windows: %v", err)
			return fmt.Errorf("%w: failed to resolve schedule windows: %v", ErrInternal, err)
		}

		// 9.2. Полная зона должна лежать внутри рабочих окон
		if !windows.CoversRaw(occupiedZone) {
			uc.logger.Warn("CreateAppointment: interval outside schedule for staff=%d", req.StaffID)
			return &ConflictError{Reason: ReasonOutsideSchedule}
		}

		// 9.3. И не пересекать блокировки
		if windows.IntersectsBlocked(occupiedZone) {
			uc.logger.Warn("CreateAppointment: interval hits blocked window for staff=%d", req.StaffID)
			return &ConflictError{Reason: ReasonBlocked}
		}

		// 9.4. Живое чтение занятых интервалов мастера с блокировкой строк
		staffOccupied, err := uc.appointmentRepo.GetOccupiedRanges(txCtx, apptStorage.OccupancyFilter{
			StaffID: ptr.Ptr(req.StaffID),
			From:    date,
			To:      date.AddDate(0, 0, 1),
		})
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get staff occupancy: %v", err)
			return fmt.Errorf("%w: failed to get staff occupancy: %v", ErrInternal, err)
		}

		for _, r := range staffOccupied {
			if r.Overlaps(occupiedZone) {
				uc.logger.Warn("CreateAppointment: staff conflict for staff=%d", req.StaffID)
				return &ConflictError{Reason: ReasonStaffConflict}
			}
		}

		// 9.5. Занятость кабинета, если услуга его требует
		if roomID != nil {
			roomOccupied, err := uc.appointmentRepo.GetOccupiedRanges(txCtx, apptStorage.OccupancyFilter{
				RoomID: roomID,
				From:   date,
				To:     date.AddDate(0, 0, 1),
			})
			if err != nil {
				uc.logger.Error("CreateAppointment: failed to get room occupancy: %v", err)
				return fmt.Errorf("%w: failed to get room occupancy: %v", ErrInternal, err)
			}

			for _, r := range roomOccupied {
				if r.Overlaps(occupiedZone) {
					uc.logger.Warn("CreateAppointment: room conflict for room=%d", *roomID)
					return &ConflictError{Reason: ReasonRoomConflict}
				}
			}
		}

		// 9.6. Сохраняем запись
		created, err := uc.appointmentRepo.Create(txCtx, &domain.Appointment{
			ClientID:      req.ClientID,
			StaffID:       req.StaffID,
			ServiceID:     req.ServiceID,
			RoomID:        roomID,
			LocationID:    req.LocationID,
			StartTime:     visible.Start,
			EndTime:       visible.End,
			OccupiedFrom:  occupiedZone.Start,
			OccupiedUntil: occupiedZone.End,
			Status:        domain.StatusConfirmed,
			PaymentStatus: domain.PaymentUnpaid,
			Notes:         req.Notes,
		})
		if err != nil {
			// Exclusion-констрейнт сработал раньше нашей проверки
			if errors.Is(err, apptStorage.ErrStaffOverlap) {
				return &ConflictError{Reason: ReasonStaffConflict}
			}
			if errors.Is(err, apptStorage.ErrRoomOverlap) {
				return &ConflictError{Reason: ReasonRoomConflict}
			}
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrRetryExhausted) {
			uc.logger.Warn("CreateAppointment: serialization retries exhausted for staff=%d", req.StaffID)
			uc.incMetric("concurrency_conflict")
			return nil, ErrConcurrencyConflict
		}
		if conflictErr, ok := AsConflictError(err); ok {
			uc.incMetric(string(conflictErr.Reason))
			return nil, conflictErr
		}
		uc.incMetric("error")
		return nil, err
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%d", result.ID)
	uc.incMetric("created")

	// 10. Сбрасываем кэш слотов мастера на эту дату
	if uc.slotsCache != nil {
		if err := uc.slotsCache.InvalidateStaffDay(ctx, req.StaffID, date); err != nil {
			uc.logger.Warn("CreateAppointment: failed to invalidate slots cache: %v", err)
		}
	}

	// 11. Событие автоматизации после коммита; ошибки обработчиков
	// не влияют на результат
	if uc.dispatcher != nil {
		uc.dispatcher.Dispatch(automationEvent(result, now))
	}

	return &Response{
		ID:            result.ID,
		ClientID:      result.ClientID,
		StaffID:       result.StaffID,
		ServiceID:     result.ServiceID,
		RoomID:        result.RoomID,
		LocationID:    result.LocationID,
		StartTime:     result.StartTime,
		EndTime:       result.EndTime,
		Status:        string(result.Status),
		PaymentStatus: string(result.PaymentStatus),
		Notes:         result.Notes,
		CreatedAt:     result.CreatedAt,
		UpdatedAt:     result.UpdatedAt,
	}, nil
}

func (uc *UseCase) incMetric(outcome string) {
	if uc.metrics != nil {
		uc.metrics.IncAppointment(outcome)
	}
}
