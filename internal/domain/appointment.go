package domain

import (
	"time"

	"github.com/salonflow/scheduling-service/pkg/timerange"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// PaymentStatus represents the payment state of an appointment
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// statusTransitions is the closed transition table for appointment statuses.
// pending → confirmed → completed, confirmed → no_show, and every other
// status → cancelled (including no_show, so a mistaken mark can be
// corrected by an administrator). Cancelled is the only terminal status.
var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
	StatusCompleted: {StatusCancelled},
	StatusCancelled: {},
	StatusNoShow:    {StatusCancelled},
}

// ValidStatus returns true if s is a known appointment status
func ValidStatus(s AppointmentStatus) bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransition returns true if the status change from → to is allowed
// by the transition table. A transition to the same status is not listed
// here; callers treat it as an idempotent no-op.
func CanTransition(from, to AppointmentStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Appointment represents a booked service appointment.
// EndTime is always StartTime + service duration; buffers are not part of
// the client-visible interval and live in [OccupiedFrom, OccupiedUntil).
type Appointment struct {
	ID         int64
	ClientID   int64
	StaffID    int64
	ServiceID  int64
	RoomID     *int64
	LocationID int64

	StartTime time.Time
	EndTime   time.Time

	// Buffer-padded exclusion zone, persisted alongside the visible interval
	// and guarded by the storage exclusion constraints.
	OccupiedFrom  time.Time
	OccupiedUntil time.Time

	Status        AppointmentStatus
	PaymentStatus PaymentStatus

	Notes              *string
	CancellationReason *string
	CancelledAt        *time.Time

	ReminderSentAt *time.Time
	FollowUpSentAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccupiesTime returns true if the appointment excludes its interval from
// availability. Cancelled and no-show appointments never occupy time.
func (a *Appointment) OccupiesTime() bool {
	return a.Status == StatusPending ||
		a.Status == StatusConfirmed ||
		a.Status == StatusCompleted
}

// CanBeCancelled returns true if the appointment can still be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return CanTransition(a.Status, StatusCancelled)
}

// IsTerminal returns true if no further status transitions are possible
func (a *Appointment) IsTerminal() bool {
	return len(statusTransitions[a.Status]) == 0
}

// VisibleInterval returns the client-visible [StartTime, EndTime) range
func (a *Appointment) VisibleInterval() timerange.Range {
	return timerange.Range{Start: a.StartTime, End: a.EndTime}
}

// OccupiedInterval returns the buffer-padded exclusion range
func (a *Appointment) OccupiedInterval() timerange.Range {
	return timerange.Range{Start: a.OccupiedFrom, End: a.OccupiedUntil}
}

// StaffAppointmentsFilter фильтр для выборки записей мастера
type StaffAppointmentsFilter struct {
	StaffID         int64
	StartDate       *time.Time
	EndDate         *time.Time
	Status          *AppointmentStatus
	IncludeInactive bool // Включать ли отменённые и no-show записи
}
