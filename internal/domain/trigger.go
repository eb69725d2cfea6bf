package domain

// Trigger is a named automation lifecycle event that external
// collaborators (SMS, email) subscribe to.
type Trigger string

const (
	TriggerBookingConfirmation Trigger = "booking_confirmation"
	TriggerAppointmentReminder Trigger = "appointment_reminder"
	TriggerAfterPayment        Trigger = "after_payment"
	TriggerCancellation        Trigger = "cancellation"
	TriggerNoShow              Trigger = "no_show"
	TriggerFollowUp            Trigger = "follow_up"
	TriggerCustom              Trigger = "custom"
)

// TriggerForTransition maps a committed status transition to the trigger
// it emits. Not every transition fires one: completion only arms the
// time-based follow_up, which the periodic scanner emits later.
func TriggerForTransition(from, to AppointmentStatus) (Trigger, bool) {
	switch {
	case to == StatusConfirmed:
		return TriggerBookingConfirmation, true
	case to == StatusCancelled:
		return TriggerCancellation, true
	case to == StatusNoShow:
		return TriggerNoShow, true
	default:
		return "", false
	}
}
