package models

import (
	"github.com/salonflow/scheduling-service/internal/domain"
)

// CreateServiceRequest запрос на создание услуги
type CreateServiceRequest struct {
	Name                string `json:"name"`
	Category            string `json:"category"`
	DurationMinutes     int    `json:"durationMinutes"`
	BufferBeforeMinutes int    `json:"bufferBeforeMinutes"`
	BufferAfterMinutes  int    `json:"bufferAfterMinutes"`
	RoomID              *int64 `json:"roomId,omitempty"`
}

// ToDomainService конвертирует запрос в domain модель
func (r *CreateServiceRequest) ToDomainService() *domain.Service {
	return &domain.Service{
		Name:                r.Name,
		Category:            r.Category,
		DurationMinutes:     r.DurationMinutes,
		BufferBeforeMinutes: r.BufferBeforeMinutes,
		BufferAfterMinutes:  r.BufferAfterMinutes,
		RoomID:              r.RoomID,
		Active:              true,
	}
}

// ServiceResponse ответ с данными услуги
type ServiceResponse struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Category            string `json:"category"`
	DurationMinutes     int    `json:"durationMinutes"`
	BufferBeforeMinutes int    `json:"bufferBeforeMinutes"`
	BufferAfterMinutes  int    `json:"bufferAfterMinutes"`
	RoomID              *int64 `json:"roomId,omitempty"`
	Active              bool   `json:"active"`
}

// FromDomainService конвертирует domain модель в DTO
func FromDomainService(s *domain.Service) *ServiceResponse {
	if s == nil {
		return nil
	}
	return &ServiceResponse{
		ID:                  s.ID,
		Name:                s.Name,
		Category:            s.Category,
		DurationMinutes:     s.DurationMinutes,
		BufferBeforeMinutes: s.BufferBeforeMinutes,
		BufferAfterMinutes:  s.BufferAfterMinutes,
		RoomID:              s.RoomID,
		Active:              s.Active,
	}
}
