package create_appointment

import (
	"context"
	"time"

	"github.com/salonflow/scheduling-service/internal/automation"
	"github.com/salonflow/scheduling-service/internal/domain"
	"github.com/salonflow/scheduling-service/internal/infra/storage/appointment"
	"github.com/salonflow/scheduling-service/pkg/timerange"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetForDate(ctx context.Context, staffID int64, date time.Time) ([]*domain.StaffSchedule, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	GetOccupiedRanges(ctx context.Context, filter appointment.OccupancyFilter) ([]timerange.Range, error)
}

// CatalogRepository интерфейс репозитория справочников
type CatalogRepository interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetStaff(ctx context.Context, id int64) (*domain.StaffMember, error)
	GetRoom(ctx context.Context, id int64) (*domain.Room, error)
	GetLocation(ctx context.Context, id int64) (*domain.Location, error)
	StaffCanPerform(ctx context.Context, staffID, serviceID int64) (bool, error)
}

// SettingsRepository интерфейс репозитория настроек бронирования
type SettingsRepository interface {
	GetForLocation(ctx context.Context, locationID int64) (*domain.BookingSettings, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Dispatcher интерфейс диспетчера автоматизации
type Dispatcher interface {
	Dispatch(event automation.Event)
}

// SlotsInvalidator сбрасывает кэш слотов мастера после успешного создания записи
type SlotsInvalidator interface {
	InvalidateStaffDay(ctx context.Context, staffID int64, date time.Time) error
}

// Metrics интерфейс метрик создания записей
type Metrics interface {
	IncAppointment(outcome string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
