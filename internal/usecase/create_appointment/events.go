package create_appointment

import (
	"time"

	"github.com/salonflow/scheduling-service/internal/automation"
	"github.com/salonflow/scheduling-service/internal/domain"
)

// automationEvent собирает событие подтверждения по созданной записи
func automationEvent(appt *domain.Appointment, now time.Time) automation.Event {
	return automation.Event{
		Trigger:     domain.TriggerBookingConfirmation,
		Appointment: *appt,
		OccurredAt:  now,
	}
}
