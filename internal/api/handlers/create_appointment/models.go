package create_appointment

import (
	"time"

	createAppointment "github.com/salonflow/scheduling-service/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	StaffID    int64   `json:"staffId"`
	ServiceID  int64   `json:"serviceId"`
	LocationID int64   `json:"locationId"`
	StartTime  string  `json:"startTime"` // RFC 3339
	RoomID     *int64  `json:"roomId,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID            int64   `json:"id"`
	ClientID      int64   `json:"clientId"`
	StaffID       int64   `json:"staffId"`
	ServiceID     int64   `json:"serviceId"`
	RoomID        *int64  `json:"roomId,omitempty"`
	LocationID    int64   `json:"locationId"`
	StartTime     string  `json:"startTime"` // RFC 3339
	EndTime       string  `json:"endTime"`   // RFC 3339
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	Notes         *string `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// ClientID берется из контекста аутентификации, не из тела.
func (r *CreateAppointmentRequest) ToUseCaseRequest(clientID int64) (*createAppointment.Request, error) {
	startTime, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		ClientID:   clientID,
		StaffID:    r.StaffID,
		ServiceID:  r.ServiceID,
		LocationID: r.LocationID,
		StartTime:  startTime,
		RoomID:     r.RoomID,
		Notes:      r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:            resp.ID,
		ClientID:      resp.ClientID,
		StaffID:       resp.StaffID,
		ServiceID:     resp.ServiceID,
		RoomID:        resp.RoomID,
		LocationID:    resp.LocationID,
		StartTime:     resp.StartTime.Format(time.RFC3339),
		EndTime:       resp.EndTime.Format(time.RFC3339),
		Status:        resp.Status,
		PaymentStatus: resp.PaymentStatus,
		Notes:         resp.Notes,
	}
}
