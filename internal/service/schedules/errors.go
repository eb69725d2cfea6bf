package schedules

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("schedules: invalid input")

	// ErrInvalidTimeWindow возвращается, когда окно пустое или перевернутое
	ErrInvalidTimeWindow = errors.New("schedules: start time must be before end time")

	// ErrStaffNotFound возвращается, когда мастер не найден
	ErrStaffNotFound = errors.New("schedules: staff member not found")

	// ErrLocationNotFound возвращается, когда салон не найден
	ErrLocationNotFound = errors.New("schedules: location not found")

	// ErrScheduleNotFound возвращается, когда элемент расписания не найден
	ErrScheduleNotFound = errors.New("schedules: schedule entry not found")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("schedules: internal error")
)
