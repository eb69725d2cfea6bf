package schedules

import (
	"context"
	"time"

	"github.com/salonflow/scheduling-service/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	Create(ctx context.Context, entry *domain.StaffSchedule) (*domain.StaffSchedule, error)
	GetByID(ctx context.Context, id int64) (*domain.StaffSchedule, error)
	GetByStaffID(ctx context.Context, staffID int64) ([]*domain.StaffSchedule, error)
	Delete(ctx context.Context, id int64) error
}

// CatalogRepository интерфейс справочника для проверки ссылок
type CatalogRepository interface {
	GetStaff(ctx context.Context, id int64) (*domain.StaffMember, error)
	GetLocation(ctx context.Context, id int64) (*domain.Location, error)
}

// SlotsInvalidator сбрасывает кэш слотов мастера за день
type SlotsInvalidator interface {
	InvalidateStaffDay(ctx context.Context, staffID int64, date time.Time) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
