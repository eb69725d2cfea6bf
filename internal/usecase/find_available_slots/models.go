package find_available_slots

import "time"

// Request модель запроса на получение доступных слотов
type Request struct {
	StaffID            int64     // ID мастера
	ServiceID          int64     // ID услуги
	LocationID         int64     // ID филиала
	Date               time.Time // Дата для получения слотов (без времени)
	GranularityMinutes int       // Шаг перебора; 0 = из настроек бронирования
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date       time.Time // Дата, на которую запрашивались слоты
	StaffID    int64     // ID мастера
	ServiceID  int64     // ID услуги
	LocationID int64     // ID филиала
	Slots      []Slot    // Список доступных слотов
	FromCache  bool      // Результат получен из кэша
}

// Slot видимый клиенту слот: интервал самой услуги без буферов
type Slot struct {
	StartTime time.Time
	EndTime   time.Time
}
