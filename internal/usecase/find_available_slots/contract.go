package find_available_slots

import (
	"context"
	"time"

	"github.com/salonflow/scheduling-service/internal/domain"
	"github.com/salonflow/scheduling-service/internal/infra/cache"
	"github.com/salonflow/scheduling-service/internal/infra/storage/appointment"
	"github.com/salonflow/scheduling-service/pkg/timerange"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetForDate(ctx context.Context, staffID int64, date time.Time) ([]*domain.StaffSchedule, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetOccupiedRanges(ctx context.Context, filter appointment.OccupancyFilter) ([]timerange.Range, error)
}

// CatalogRepository интерфейс репозитория справочников
type CatalogRepository interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetStaff(ctx context.Context, id int64) (*domain.StaffMember, error)
	GetLocation(ctx context.Context, id int64) (*domain.Location, error)
	StaffCanPerform(ctx context.Context, staffID, serviceID int64) (bool, error)
}

// SettingsRepository интерфейс репозитория настроек бронирования
type SettingsRepository interface {
	GetForLocation(ctx context.Context, locationID int64) (*domain.BookingSettings, error)
}

// SlotsCache кэш рассчитанных слотов; результат из кэша консультативный
type SlotsCache interface {
	Get(ctx context.Context, staffID, serviceID, locationID int64, date time.Time) ([]cache.CachedSlot, bool)
	Set(ctx context.Context, staffID, serviceID, locationID int64, date time.Time, slots []cache.CachedSlot) error
}

// Metrics интерфейс метрик запросов слотов
type Metrics interface {
	IncSlotQuery(result string)
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
