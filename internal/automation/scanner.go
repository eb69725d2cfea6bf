package automation

import (
	"context"
	"time"

	"github.com/salonflow/scheduling-service/internal/domain"
)

// Параметры сканера по умолчанию
const (
	DefaultScanInterval   = time.Minute
	DefaultReminderWindow = 24 * time.Hour
	DefaultFollowUpDelay  = 2 * time.Hour
)

// Scanner периодически находит записи, по которым пора отправить
// временное событие: напоминание перед визитом и follow-up после
// завершённой услуги. Отметка об отправке ставится до диспетчеризации,
// чтобы событие не дублировалось при перезапуске между тиками.
type Scanner struct {
	source     AppointmentSource
	dispatcher *Dispatcher
	timer      TimeProvider
	logger     Logger

	interval       time.Duration
	reminderWindow time.Duration
	followUpDelay  time.Duration
}

// NewScanner создает сканер временных триггеров
func NewScanner(source AppointmentSource, dispatcher *Dispatcher, timer TimeProvider, logger Logger) *Scanner {
	return &Scanner{
		source:         source,
		dispatcher:     dispatcher,
		timer:          timer,
		logger:         logger,
		interval:       DefaultScanInterval,
		reminderWindow: DefaultReminderWindow,
		followUpDelay:  DefaultFollowUpDelay,
	}
}

// WithIntervals настраивает период сканирования, окно напоминаний
// и задержку follow-up сообщений
func (s *Scanner) WithIntervals(interval, reminderWindow, followUpDelay time.Duration) *Scanner {
	s.interval = interval
	s.reminderWindow = reminderWindow
	s.followUpDelay = followUpDelay
	return s
}

// Run запускает цикл сканирования до отмены контекста
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("automation: scanner started, interval=%s", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("automation: scanner stopped")
			return
		case <-ticker.C:
			s.Scan(ctx)
		}
	}
}

// Scan выполняет один проход: напоминания и follow-up сообщения
func (s *Scanner) Scan(ctx context.Context) {
	now := s.timer.Now()
	s.scanReminders(ctx, now)
	s.scanFollowUps(ctx, now)
}

func (s *Scanner) scanReminders(ctx context.Context, now time.Time) {
	due, err := s.source.GetDueReminders(ctx, now, now.Add(s.reminderWindow))
	if err != nil {
		s.logger.Error("automation: failed to load due reminders: %v", err)
		return
	}

	for _, appt := range due {
		if err := s.source.MarkReminderSent(ctx, appt.ID, now); err != nil {
			s.logger.Error("automation: failed to mark reminder sent for appointment %d: %v", appt.ID, err)
			continue
		}

		s.dispatcher.Dispatch(Event{
			Trigger:     domain.TriggerAppointmentReminder,
			Appointment: *appt,
			OccurredAt:  now,
		})
	}
}

func (s *Scanner) scanFollowUps(ctx context.Context, now time.Time) {
	due, err := s.source.GetDueFollowUps(ctx, now.Add(-s.followUpDelay))
	if err != nil {
		s.logger.Error("automation: failed to load due follow-ups: %v", err)
		return
	}

	for _, appt := range due {
		if err := s.source.MarkFollowUpSent(ctx, appt.ID, now); err != nil {
			s.logger.Error("automation: failed to mark follow-up sent for appointment %d: %v", appt.ID, err)
			continue
		}

		s.dispatcher.Dispatch(Event{
			Trigger:     domain.TriggerFollowUp,
			Appointment: *appt,
			OccurredAt:  now,
		})
	}
}
