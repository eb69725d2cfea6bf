package domain

import "time"

// BookingSettings represents booking configuration.
// Two-level hierarchy: a row with LocationID set overrides the global row
// (LocationID == nil) for that location.
type BookingSettings struct {
	ID                 int64
	LocationID         *int64 // NULL = global settings
	GranularityMinutes int
	AdvanceBookingDays int // 0 = unlimited
	MinNoticeMinutes   int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsGlobal returns true if this is the company-wide settings row
func (s *BookingSettings) IsGlobal() bool {
	return s.LocationID == nil
}

// HasAdvanceBookingLimit returns true if there is a limit on how far in
// advance appointments can be booked
func (s *BookingSettings) HasAdvanceBookingLimit() bool {
	return s.AdvanceBookingDays > 0
}

// DefaultBookingSettings возвращает настройки по умолчанию, когда в БД
// нет ни глобальной записи, ни записи для локации
func DefaultBookingSettings() *BookingSettings {
	return &BookingSettings{
		GranularityMinutes: DefaultGranularityMinutes,
		AdvanceBookingDays: DefaultAdvanceBookingDays,
		MinNoticeMinutes:   DefaultMinNoticeMinutes,
	}
}
