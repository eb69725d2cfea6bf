package notifygate

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("notifygate client: internal error")

	// ErrDeliveryFailed возвращается, когда шлюз уведомлений отклонил событие
	ErrDeliveryFailed = errors.New("notifygate client: event delivery failed")
)
