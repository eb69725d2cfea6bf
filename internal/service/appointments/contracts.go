package appointments

import (
	"context"
	"time"

	"github.com/salonflow/scheduling-service/internal/automation"
	"github.com/salonflow/scheduling-service/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByStaffWithFilter(ctx context.Context, filter domain.StaffAppointmentsFilter) ([]*domain.Appointment, error)
	GetByClientID(ctx context.Context, clientID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	Cancel(ctx context.Context, id int64, reason *string, cancelledAt time.Time) error
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
}

// Dispatcher интерфейс диспетчера автоматизации
type Dispatcher interface {
	Dispatch(event automation.Event)
}

// SlotsInvalidator сбрасывает кэш слотов мастера после изменения записи
type SlotsInvalidator interface {
	InvalidateStaffDay(ctx context.Context, staffID int64, date time.Time) error
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
