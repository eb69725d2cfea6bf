package list_schedules

import (
	"context"

	"github.com/salonflow/scheduling-service/internal/service/schedules/models"
)

type ScheduleService interface {
	ListByStaff(ctx context.Context, staffID int64) (*models.ScheduleListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
