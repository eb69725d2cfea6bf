package find_available_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/salonflow/scheduling-service/internal/availability"
	"github.com/salonflow/scheduling-service/internal/domain"
	"github.com/salonflow/scheduling-service/internal/infra/cache"
	"github.com/salonflow/scheduling-service/internal/infra/storage/appointment"
	"github.com/salonflow/scheduling-service/pkg/ptr"
)

// UseCase use case для получения доступных слотов записи
type UseCase struct {
	scheduleRepo    ScheduleRepository
	appointmentRepo AppointmentRepository
	catalogRepo     CatalogRepository
	settingsRepo    SettingsRepository
	slotsCache      SlotsCache
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
	slotsCache SlotsCache,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		scheduleRepo:    scheduleRepo,
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
		settingsRepo:    settingsRepo,
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

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("FindAvailableSlots: staff=%d, service=%d, location=%d, date=%s",
		req.StaffID, req.ServiceID, req.LocationID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("FindAvailableSlots: validation failed: %v", err)
		uc.incMetric("invalid_input")
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем филиал и приводим дату к его часовому поясу
	location, err := uc.catalogRepo.GetLocation(ctx, req.LocationID)
	if err != nil {
		uc.logger.Warn("FindAvailableSlots: location id=%d not found: %v", req.LocationID, err)
		uc.incMetric("error")
		return nil, ErrLocationNotFound
	}

	loc, err := time.LoadLocation(location.Timezone)
	if err != nil {
		uc.logger.Error("FindAvailableSlots: invalid timezone %q for location id=%d: %v",
			location.Timezone, req.LocationID, err)
		uc.incMetric("error")
		return nil, fmt.Errorf("%w: invalid location timezone: %v", ErrInternal, err)
	}

	date := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, loc)

	// 4. Получаем услугу
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		uc.logger.Warn("FindAvailableSlots: service id=%d not found: %v", req.ServiceID, err)
		uc.incMetric("error")
		return nil, ErrServiceNotFound
	}
	if !service.Active {
		uc.logger.Warn("FindAvailableSlots: service id=%d is inactive", req.ServiceID)
		uc.incMetric("error")
		return nil, ErrServiceInactive
	}

	// 5. Получаем мастера и проверяем, что он оказывает услугу
	if _, err := uc.catalogRepo.GetStaff(ctx, req.StaffID); err != nil {
		uc.logger.Warn("FindAvailableSlots: staff id=%d not found: %v", req.StaffID, err)
		uc.incMetric("error")
		return nil, ErrStaffNotFound
	}

	canPerform, err := uc.catalogRepo.StaffCanPerform(ctx, req.StaffID, req.ServiceID)
	if err != nil {
		uc.logger.Error("FindAvailableSlots: failed to check staff services: %v", err)
		uc.incMetric("error")
		return nil, fmt.Errorf("%w: failed to check staff services: %v", ErrInternal, err)
	}
	if !canPerform {
		uc.logger.Warn("FindAvailableSlots: staff id=%d does not provide service id=%d",
			req.StaffID, req.ServiceID)
		uc.incMetric("error")
		return nil, ErrServiceNotProvided
	}

	// 6. Получаем настройки бронирования и валидируем дату
	settings, err := uc.settingsRepo.GetForLocation(ctx, req.LocationID)
	if err != nil {
		uc.logger.Error("FindAvailableSlots: failed to get booking settings: %v", err)
		uc.incMetric("error")
		return nil, fmt.Errorf("%w: failed to get booking settings: %v", ErrInternal, err)
	}

	granularity := req.GranularityMinutes
	if granularity == 0 {
		granularity = settings.GranularityMinutes
	}

	if err := validateDate(date, now.In(loc), settings.AdvanceBookingDays); err != nil {
		uc.logger.Warn("FindAvailableSlots: date validation failed: %v", err)
		uc.incMetric("invalid_input")
		return nil, err
	}

	// 7. Пробуем кэш; результат консультативный, решает всегда транзакция создания записи
	if req.GranularityMinutes == 0 || req.GranularityMinutes == settings.GranularityMinutes {
		if cached, ok := uc.slotsCache.Get(ctx, req.StaffID, req.ServiceID, req.LocationID, date); ok {
			uc.logger.Info("FindAvailableSlots: cache hit for staff=%d, service=%d, location=%d, date=%s",
				req.StaffID, req.ServiceID, req.LocationID, date.Format(domain.DateFormat))
			uc.incMetric("cache_hit")
			return uc.buildResponse(req, date, cachedToSlots(cached, now.In(loc), settings.MinNoticeMinutes), true), nil
		}
	}

	// 8. Разворачиваем расписание мастера в открытые и заблокированные окна
	entries, err := uc.scheduleRepo.GetForDate(ctx, req.StaffID, date)
	if err != nil {
		uc.logger.Error("FindAvailableSlots: failed to get schedule entries: %v", err)
		uc.incMetric("error")
		return nil, fmt.Errorf("%w: failed to get schedule entries: %v", ErrInternal, err)
	}

	windows, err := availability.Resolve(entries, date, req.LocationID, service.Category)
	if err != nil {
		uc.logger.Error("FindAvailableSlots: failed to resolve schedule windows: %v", err)
		uc.incMetric("error")
		return nil, fmt.Errorf("%w: failed to resolve schedule windows: %v", ErrInternal, err)
	}

	// Мастер не работает в этот день
	if len(windows.Open) == 0 {
		uc.logger.Info("FindAvailableSlots: staff id=%d has no open windows on %s",
			req.StaffID, date.Format(domain.DateFormat))
		uc.incMetric("ok")
		return uc.buildResponse(req, date, []Slot{}, false), nil
	}

	// 9. Получаем занятые интервалы мастера (и кабинета, если услуга его требует)
	occupied, err := uc.appointmentRepo.GetOccupiedRanges(ctx, appointment.OccupancyFilter{
		StaffID: ptr.Ptr(req.StaffID),
		RoomID:  service.RoomID,
		From:    date,
		To:      date.AddDate(0, 0, 1),
	})
	if err != nil {
		uc.logger.Error("FindAvailableSlots: failed to get occupied ranges: %v", err)
		uc.incMetric("error")
		return nil, fmt.Errorf("%w: failed to get occupied ranges: %v", ErrInternal, err)
	}

	// 10. Свободные интервалы и перебор кандидатов
	free := windows.Free(occupied)
	slots := enumerateSlots(free, service, granularity)

	// 11. Кэшируем полный список до фильтрации по минимальному уведомлению,
	// чтобы запись оставалась пригодной в течение всего TTL
	if req.GranularityMinutes == 0 || req.GranularityMinutes == settings.GranularityMinutes {
		if err := uc.slotsCache.Set(ctx, req.StaffID, req.ServiceID, req.LocationID, date, slotsToCached(slots)); err != nil {
			uc.logger.Warn("FindAvailableSlots: failed to cache slots: %v", err)
		}
	}

	slots = filterByNotice(slots, now.In(loc), settings.MinNoticeMinutes)

	uc.logger.Info("FindAvailableSlots: %d slots for staff=%d, service=%d, date=%s",
		len(slots), req.StaffID, req.ServiceID, date.Format(domain.DateFormat))
	uc.incMetric("ok")

	return uc.buildResponse(req, date, slots, false), nil
}

func (uc *UseCase) buildResponse(req *Request, date time.Time, slots []Slot, fromCache bool) *Response {
	return &Response{
		Date:       date,
		StaffID:    req.StaffID,
		ServiceID:  req.ServiceID,
		LocationID: req.LocationID,
		Slots:      slots,
		FromCache:  fromCache,
	}
}

func (uc *UseCase) incMetric(result string) {
	if uc.metrics != nil {
		uc.metrics.IncSlotQuery(result)
	}
}

func cachedToSlots(cached []cache.CachedSlot, now time.Time, minNoticeMinutes int) []Slot {
	slots := make([]Slot, 0, len(cached))
	for _, c := range cached {
		slots = append(slots, Slot{StartTime: c.StartTime, EndTime: c.EndTime})
	}
	return filterByNotice(slots, now, minNoticeMinutes)
}

func slotsToCached(slots []Slot) []cache.CachedSlot {
	cached := make([]cache.CachedSlot, 0, len(slots))
	for _, s := range slots {
		cached = append(cached, cache.CachedSlot{StartTime: s.StartTime, EndTime: s.EndTime})
	}
	return cached
}
