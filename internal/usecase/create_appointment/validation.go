package create_appointment

import (
	"fmt"
	"time"

	"github.com/salonflow/scheduling-service/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.LocationID <= 0 {
		return fmt.Errorf("%w: locationID must be positive", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if req.RoomID != nil && *req.RoomID <= 0 {
		return fmt.Errorf("%w: roomID must be positive", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateTiming проверяет дату и минимальное время до начала записи
func validateTiming(startTime, now time.Time, settings *domain.BookingSettings) error {
	if startTime.Before(now) {
		return ErrInvalidDate
	}

	notice := time.Duration(settings.MinNoticeMinutes) * time.Minute
	if startTime.Before(now.Add(notice)) {
		return fmt.Errorf("%w: at least %d minutes notice required", ErrTooLateToBook, settings.MinNoticeMinutes)
	}

	if settings.HasAdvanceBookingLimit() {
		maxDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
			AddDate(0, 0, settings.AdvanceBookingDays+1)
		if !startTime.Before(maxDate) {
			return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, settings.AdvanceBookingDays)
		}
	}

	return nil
}
