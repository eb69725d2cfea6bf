package find_available_slots

import "errors"

var (
	// ErrStaffNotFound возвращается, когда мастер не найден
	ErrStaffNotFound = errors.New("staff member not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrLocationNotFound возвращается, когда филиал не найден
	ErrLocationNotFound = errors.New("location not found")

	// ErrServiceNotProvided возвращается, когда мастер не оказывает услугу
	ErrServiceNotProvided = errors.New("staff member does not provide this service")

	// ErrServiceInactive возвращается, когда услуга отключена
	ErrServiceInactive = errors.New("service is not active")

	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = errors.New("invalid date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("date is too far in the future")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
