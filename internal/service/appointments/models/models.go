package models

import (
	"errors"
	"time"

	"github.com/salonflow/scheduling-service/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrInvalidPaymentStatus возвращается при некорректном статусе оплаты
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

// Request модели

// UpdateStatusRequest запрос на обновление статуса записи
type UpdateStatusRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"` // Причина, обязательна для cancelled
}

// UpdatePaymentStatusRequest запрос на обновление статуса оплаты
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

// GetStaffAppointmentsRequest запрос на получение записей мастера
type GetStaffAppointmentsRequest struct {
	StaffID         int64      `json:"staffId"`
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отменённые и no-show записи
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetStaffAppointmentsRequest) ToDomainFilter() (domain.StaffAppointmentsFilter, error) {
	filter := domain.StaffAppointmentsFilter{
		StaffID:         r.StaffID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainAppointmentStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID         int64  `json:"id"`
	ClientID   int64  `json:"clientId"`
	StaffID    int64  `json:"staffId"`
	ServiceID  int64  `json:"serviceId"`
	RoomID     *int64 `json:"roomId,omitempty"`
	LocationID int64  `json:"locationId"`

	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`

	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`

	Notes              *string `json:"notes,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                 a.ID,
		ClientID:           a.ClientID,
		StaffID:            a.StaffID,
		ServiceID:          a.ServiceID,
		RoomID:             a.RoomID,
		LocationID:         a.LocationID,
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		Status:             string(a.Status),
		PaymentStatus:      string(a.PaymentStatus),
		Notes:              a.Notes,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	if a.CancelledAt != nil {
		cancelledAt := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledAt
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	result := make([]AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		result = append(result, *FromDomainAppointment(a))
	}
	return &AppointmentListResponse{Appointments: result}
}

// ToDomainAppointmentStatus конвертирует строку в domain статус
func ToDomainAppointmentStatus(s string) (domain.AppointmentStatus, error) {
	status := domain.AppointmentStatus(s)
	if !domain.ValidStatus(status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// ToDomainPaymentStatus конвертирует строку в domain статус оплаты
func ToDomainPaymentStatus(s string) (domain.PaymentStatus, error) {
	switch status := domain.PaymentStatus(s); status {
	case domain.PaymentUnpaid, domain.PaymentPaid, domain.PaymentRefunded:
		return status, nil
	default:
		return "", ErrInvalidPaymentStatus
	}
}
