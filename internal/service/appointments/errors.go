package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInvalidStatus возвращается при неизвестном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrInvalidTransition возвращается, когда переход статуса запрещен таблицей переходов
	ErrInvalidTransition = errors.New("status transition is not allowed")

	// ErrInvalidPaymentStatus возвращается при неизвестном статусе оплаты
	ErrInvalidPaymentStatus = errors.New("invalid payment status")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
