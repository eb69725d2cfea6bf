package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/salonflow/scheduling-service/internal/domain"
	"github.com/salonflow/scheduling-service/pkg/types"
)

const dateLayout = "2006-01-02"

var (
	// ErrInvalidDayOfWeek возвращается при дне недели вне диапазона 0-6
	ErrInvalidDayOfWeek = errors.New("day of week must be between 0 (Sunday) and 6 (Saturday)")

	// ErrInvalidDate возвращается при некорректном формате даты
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")
)

// Request модели

// CreateWindowRequest запрос на создание повторяющегося окна доступности
type CreateWindowRequest struct {
	StaffID           int64    `json:"staffId"`
	DayOfWeek         int      `json:"dayOfWeek"` // 0 = воскресенье ... 6 = суббота
	StartTime         string   `json:"startTime"` // формат HH:MM
	EndTime           string   `json:"endTime"`   // формат HH:MM
	LocationID        *int64   `json:"locationId,omitempty"`
	ServiceCategories []string `json:"serviceCategories,omitempty"`
	StartDate         string   `json:"startDate"`         // формат YYYY-MM-DD
	EndDate           *string  `json:"endDate,omitempty"` // формат YYYY-MM-DD
}

// CreateBlockRequest запрос на создание разовой блокировки на конкретную дату
type CreateBlockRequest struct {
	StaffID   int64  `json:"staffId"`
	Date      string `json:"date"`      // формат YYYY-MM-DD
	StartTime string `json:"startTime"` // формат HH:MM
	EndTime   string `json:"endTime"`   // формат HH:MM
}

// ToDomainSchedule конвертирует запрос на окно в domain модель
func (r *CreateWindowRequest) ToDomainSchedule() (*domain.StaffSchedule, error) {
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return nil, ErrInvalidDayOfWeek
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}
	endTime, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	startDate, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("startDate: %w", ErrInvalidDate)
	}

	var endDate *time.Time
	if r.EndDate != nil {
		parsed, err := time.Parse(dateLayout, *r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("endDate: %w", ErrInvalidDate)
		}
		endDate = &parsed
	}

	return &domain.StaffSchedule{
		StaffID:           r.StaffID,
		DayOfWeek:         time.Weekday(r.DayOfWeek),
		StartTime:         startTime,
		EndTime:           endTime,
		LocationID:        r.LocationID,
		ServiceCategories: r.ServiceCategories,
		StartDate:         startDate,
		EndDate:           endDate,
		IsBlocked:         false,
	}, nil
}

// ToDomainSchedule конвертирует запрос на блокировку в domain модель.
// Блокировка - это запись расписания на один день: StartDate == EndDate,
// day_of_week совпадает с днем недели даты.
func (r *CreateBlockRequest) ToDomainSchedule() (*domain.StaffSchedule, error) {
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}
	endTime, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return nil, fmt.Errorf("date: %w", ErrInvalidDate)
	}
	endDate := date

	return &domain.StaffSchedule{
		StaffID:   r.StaffID,
		DayOfWeek: date.Weekday(),
		StartTime: startTime,
		EndTime:   endTime,
		StartDate: date,
		EndDate:   &endDate,
		IsBlocked: true,
	}, nil
}

// Response модели

// ScheduleResponse ответ с элементом расписания
type ScheduleResponse struct {
	ID                int64    `json:"id"`
	StaffID           int64    `json:"staffId"`
	DayOfWeek         int      `json:"dayOfWeek"`
	StartTime         string   `json:"startTime"`
	EndTime           string   `json:"endTime"`
	LocationID        *int64   `json:"locationId,omitempty"`
	ServiceCategories []string `json:"serviceCategories,omitempty"`
	StartDate         string   `json:"startDate"`
	EndDate           *string  `json:"endDate,omitempty"`
	IsBlocked         bool     `json:"isBlocked"`
}

// ScheduleListResponse ответ со списком элементов расписания
type ScheduleListResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
}

// FromDomainSchedule конвертирует domain модель в DTO
func FromDomainSchedule(s *domain.StaffSchedule) *ScheduleResponse {
	if s == nil {
		return nil
	}

	resp := &ScheduleResponse{
		ID:                s.ID,
		StaffID:           s.StaffID,
		DayOfWeek:         int(s.DayOfWeek),
		StartTime:         s.StartTime.String(),
		EndTime:           s.EndTime.String(),
		LocationID:        s.LocationID,
		ServiceCategories: s.ServiceCategories,
		StartDate:         s.StartDate.Format(dateLayout),
		IsBlocked:         s.IsBlocked,
	}

	if s.EndDate != nil {
		endDate := s.EndDate.Format(dateLayout)
		resp.EndDate = &endDate
	}

	return resp
}

// FromDomainScheduleList конвертирует список domain моделей в DTO
func FromDomainScheduleList(schedules []*domain.StaffSchedule) *ScheduleListResponse {
	result := make([]ScheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		result = append(result, *FromDomainSchedule(s))
	}
	return &ScheduleListResponse{Schedules: result}
}
