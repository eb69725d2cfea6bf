package catalog

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("catalog: invalid input")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("catalog: service not found")

	// ErrRoomNotFound возвращается, когда кабинет не найден
	ErrRoomNotFound = errors.New("catalog: room not found")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("catalog: internal error")
)
