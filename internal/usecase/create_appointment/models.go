package create_appointment

import "time"

// Request модель запроса на создание записи
type Request struct {
	ClientID   int64     // ID клиента
	StaffID    int64     // ID мастера
	ServiceID  int64     // ID услуги
	LocationID int64     // ID филиала
	StartTime  time.Time // Видимое клиенту время начала услуги
	RoomID     *int64    // Кабинет; nil = кабинет услуги (если требуется)
	Notes      *string   // Заметки клиента
}

// Response модель ответа с созданной записью
type Response struct {
	ID            int64
	ClientID      int64
	StaffID       int64
	ServiceID     int64
	RoomID        *int64
	LocationID    int64
	StartTime     time.Time
	EndTime       time.Time
	Status        string
	PaymentStatus string
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
