package notifygate

import "time"

// WebhookPayload событие автоматизации в формате шлюза уведомлений.
// Шлюз сам решает, по какому каналу уведомить клиента (SMS, email, push).
type WebhookPayload struct {
	Trigger       string    `json:"trigger"`
	AppointmentID int64     `json:"appointmentId"`
	ClientID      int64     `json:"clientId"`
	StaffID       int64     `json:"staffId"`
	ServiceID     int64     `json:"serviceId"`
	LocationID    int64     `json:"locationId"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurredAt"`
}
