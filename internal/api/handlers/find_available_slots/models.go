package find_available_slots

import (
	"time"

	findAvailableSlots "github.com/salonflow/scheduling-service/internal/usecase/find_available_slots"
)

// SlotsResponse HTTP response model
type SlotsResponse struct {
	Date       string         `json:"date"`
	StaffID    int64          `json:"staffId"`
	ServiceID  int64          `json:"serviceId"`
	LocationID int64          `json:"locationId"`
	Slots      []SlotResponse `json:"slots"`
}

// SlotResponse видимый клиенту слот
type SlotResponse struct {
	StartTime string `json:"startTime"` // RFC 3339
	EndTime   string `json:"endTime"`   // RFC 3339
}

// ToUseCaseRequest формирует запрос к use case из параметров HTTP запроса
func ToUseCaseRequest(staffID, serviceID, locationID int64, dateStr string, granularity int) (*findAvailableSlots.Request, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, err
	}

	return &findAvailableSlots.Request{
		StaffID:            staffID,
		ServiceID:          serviceID,
		LocationID:         locationID,
		Date:               date,
		GranularityMinutes: granularity,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *findAvailableSlots.Response) *SlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartTime: s.StartTime.Format(time.RFC3339),
			EndTime:   s.EndTime.Format(time.RFC3339),
		})
	}

	return &SlotsResponse{
		Date:       resp.Date.Format("2006-01-02"),
		StaffID:    resp.StaffID,
		ServiceID:  resp.ServiceID,
		LocationID: resp.LocationID,
		Slots:      slots,
	}
}
