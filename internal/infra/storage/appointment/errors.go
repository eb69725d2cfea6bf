package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrStaffOverlap возвращается, когда занятая зона пересекается с другой записью мастера
	ErrStaffOverlap = errors.New("appointment.repository: staff time range overlap")

	// ErrRoomOverlap возвращается, когда занятая зона пересекается с другой записью в кабинете
	ErrRoomOverlap = errors.New("appointment.repository: room time range overlap")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
