package domain

import "errors"

// Default configuration values
const (
	DefaultGranularityMinutes = 15
	DefaultAdvanceBookingDays = 0 // 0 = unlimited
	DefaultMinNoticeMinutes   = 0
)

// Business validation constants
const (
	MinGranularityMinutes     = 5
	MaxGranularityMinutes     = 120
	MaxServiceDurationMinutes = 480 // 8 hours
	MaxAdvanceBookingDays     = 365
	MaxNotesLength            = 500
	MaxReasonLength           = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

var (
	// ErrInvalidServiceDefinition возвращается при некорректном определении услуги
	ErrInvalidServiceDefinition = errors.New("invalid service definition")
)

// OccupyingStatuses список статусов, при которых запись занимает время мастера
// Используется в выборках занятых интервалов и в exclusion-констрейнтах
var OccupyingStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}

// InactiveStatuses список статусов, при которых запись не занимает время
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusNoShow,
}
