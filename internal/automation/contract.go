package automation

import (
	"context"
	"time"

	"github.com/salonflow/scheduling-service/internal/domain"
)

// Handler обработчик автоматизации, подписанный на триггеры.
// Реализации: webhook-клиент нотификаций, логирующий обработчик и т.п.
type Handler interface {
	Name() string
	Handle(ctx context.Context, event Event) error
}

// AppointmentSource источник записей для периодического сканера
type AppointmentSource interface {
	GetDueReminders(ctx context.Context, from, to time.Time) ([]*domain.Appointment, error)
	MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) error
	GetDueFollowUps(ctx context.Context, before time.Time) ([]*domain.Appointment, error)
	MarkFollowUpSent(ctx context.Context, id int64, sentAt time.Time) error
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

// Metrics интерфейс метрик диспетчеризации
type Metrics interface {
	IncAutomationDispatch(trigger, result string)
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
