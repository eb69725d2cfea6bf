package create_appointment

import (
	"errors"
	"fmt"
)

var (
	// ErrStaffNotFound возвращается, когда мастер не найден
	ErrStaffNotFound = errors.New("create_appointment: staff member not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_appointment: service not found")

	// ErrLocationNotFound возвращается, когда филиал не найден
	ErrLocationNotFound = errors.New("create_appointment: location not found")

	// ErrRoomNotFound возвращается, когда кабинет не найден
	ErrRoomNotFound = errors.New("create_appointment: room not found")

	// ErrServiceNotProvided возвращается, когда мастер не оказывает услугу
	ErrServiceNotProvided = errors.New("create_appointment: staff member does not provide this service")

	// ErrServiceInactive возвращается, когда услуга отключена
	ErrServiceInactive = errors.New("create_appointment: service is not active")

	// ErrInvalidDate возвращается при некорректной дате записи
	ErrInvalidDate = errors.New("create_appointment: invalid appointment date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("create_appointment: date is too far in the future")

	// ErrTooLateToBook возвращается, когда запись нарушает minNoticeMinutes
	ErrTooLateToBook = errors.New("create_appointment: too late to book this slot")

	// ErrConcurrencyConflict возвращается, когда лимит повторов сериализуемой
	// транзакции исчерпан; клиенту следует заново запросить слоты
	ErrConcurrencyConflict = errors.New("create_appointment: concurrency conflict, please retry")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)

// ConflictReason причина конфликтного отказа; причины взаимоисключающие
// и проверяются в фиксированном порядке
type ConflictReason string

const (
	ReasonOutsideSchedule ConflictReason = "outside_schedule"
	ReasonBlocked         ConflictReason = "blocked"
	ReasonStaffConflict   ConflictReason = "staff_conflict"
	ReasonRoomConflict    ConflictReason = "room_conflict"
)

// ConflictError отказ в создании записи из-за конфликта расписания
type ConflictError struct {
	Reason ConflictReason
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("create_appointment: schedule conflict: %s", e.Reason)
}

// AsConflictError возвращает ConflictError из цепочки ошибок, если он там есть
func AsConflictError(err error) (*ConflictError, bool) {
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr, true
	}
	return nil, false
}
