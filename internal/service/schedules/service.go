package schedules

import (
	"context"
	"errors"
	"fmt"

	"github.com/salonflow/scheduling-service/internal/domain"
	catalogRepo "github.com/salonflow/scheduling-service/internal/infra/storage/catalog"
	scheduleRepo "github.com/salonflow/scheduling-service/internal/infra/storage/schedule"
	"github.com/salonflow/scheduling-service/internal/service/schedules/models"
)

// Service сервис управления расписаниями мастеров: повторяющиеся окна
// доступности и разовые блокировки. Административный контур; чтение для
// расчета слотов идет напрямую через репозиторий.
type Service struct {
	scheduleRepo ScheduleRepository
	catalogRepo  CatalogRepository
	slotsCache   SlotsInvalidator
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	catalogRepo CatalogRepository,
	slotsCache SlotsInvalidator,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		catalogRepo:  catalogRepo,
		slotsCache:   slotsCache,
		logger:       logger,
	}
}

// CreateWindow создает повторяющееся окно доступности мастера
func (s *Service) CreateWindow(ctx context.Context, req *models.CreateWindowRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("CreateWindow: creating window for staff=%d day=%d", req.StaffID, req.DayOfWeek)

	entry, err := req.ToDomainSchedule()
	if err != nil {
		s.logger.Warn("CreateWindow: invalid request for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return s.create(ctx, entry)
}

// CreateBlock создает разовую блокировку на дату. Блокировка всегда
// побеждает пересекающиеся открытые окна при расчете доступности.
func (s *Service) CreateBlock(ctx context.Context, req *models.CreateBlockRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("CreateBlock: creating block for staff=%d date=%s", req.StaffID, req.Date)

	entry, err := req.ToDomainSchedule()
	if err != nil {
		s.logger.Warn("CreateBlock: invalid request for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	resp, err := s.create(ctx, entry)
	if err != nil {
		return nil, err
	}

	// Блокировка сразу сужает доступность - сбрасываем кэш слотов за день
	s.invalidateDay(ctx, entry)

	return resp, nil
}

// ListByStaff возвращает все элементы расписания мастера
func (s *Service) ListByStaff(ctx context.Context, staffID int64) (*models.ScheduleListResponse, error) {
	s.logger.Info("ListByStaff: fetching schedules for staff=%d", staffID)

	if staffID <= 0 {
		return nil, fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}

	entries, err := s.scheduleRepo.GetByStaffID(ctx, staffID)
	if err != nil {
		s.logger.Error("ListByStaff: repository error for staff=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: ListByStaff - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainScheduleList(entries), nil
}

// Delete удаляет элемент расписания
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.logger.Info("Delete: deleting schedule entry id=%d", id)

	if id <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}

	entry, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("Delete: schedule entry id=%d not found", id)
			return ErrScheduleNotFound
		}
		s.logger.Error("Delete: repository error for schedule entry id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	if err := s.scheduleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			return ErrScheduleNotFound
		}
		s.logger.Error("Delete: failed to delete schedule entry id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	// Удаление блокировки возвращает интервал в доступность
	s.invalidateDay(ctx, entry)

	s.logger.Info("Delete: schedule entry id=%d deleted", id)
	return nil
}

func (s *Service) create(ctx context.Context, entry *domain.StaffSchedule) (*models.ScheduleResponse, error) {
	if entry.StaffID <= 0 {
		return nil, fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}
	if !entry.StartTime.IsBefore(entry.EndTime) {
		return nil, ErrInvalidTimeWindow
	}
	if entry.EndDate != nil && entry.EndDate.Before(entry.StartDate) {
		return nil, fmt.Errorf("%w: endDate must not be before startDate", ErrInvalidInput)
	}

	if _, err := s.catalogRepo.GetStaff(ctx, entry.StaffID); err != nil {
		if errors.Is(err, catalogRepo.ErrStaffNotFound) {
			s.logger.Warn("create: staff=%d not found", entry.StaffID)
			return nil, ErrStaffNotFound
		}
		s.logger.Error("create: catalog error for staff=%d: %v", entry.StaffID, err)
		return nil, fmt.Errorf("%w: create - catalog error: %v", ErrInternal, err)
	}

	if entry.LocationID != nil {
		if _, err := s.catalogRepo.GetLocation(ctx, *entry.LocationID); err != nil {
			if errors.Is(err, catalogRepo.ErrLocationNotFound) {
				s.logger.Warn("create: location=%d not found", *entry.LocationID)
				return nil, ErrLocationNotFound
			}
			s.logger.Error("create: catalog error for location=%d: %v", *entry.LocationID, err)
			return nil, fmt.Errorf("%w: create - catalog error: %v", ErrInternal, err)
		}
	}

	created, err := s.scheduleRepo.Create(ctx, entry)
	if err != nil {
		s.logger.Error("create: failed to create schedule entry for staff=%d: %v", entry.StaffID, err)
		return nil, fmt.Errorf("%w: create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("create: schedule entry id=%d created for staff=%d", created.ID, created.StaffID)
	return models.FromDomainSchedule(created), nil
}

// invalidateDay сбрасывает кэш слотов за день разовой записи. У
// повторяющихся окон затронуты все будущие даты, там кэш истекает по TTL.
func (s *Service) invalidateDay(ctx context.Context, entry *domain.StaffSchedule) {
	if s.slotsCache == nil {
		return
	}
	if entry.EndDate == nil || !entry.EndDate.Equal(entry.StartDate) {
		return
	}

	if err := s.slotsCache.InvalidateStaffDay(ctx, entry.StaffID, entry.StartDate); err != nil {
		s.logger.Warn("invalidateDay: failed to invalidate slots cache for staff=%d: %v", entry.StaffID, err)
	}
}
