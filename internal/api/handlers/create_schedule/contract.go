package create_schedule

import (
	"context"

	"github.com/salonflow/scheduling-service/internal/service/schedules/models"
)

type ScheduleService interface {
	CreateWindow(ctx context.Context, req *models.CreateWindowRequest) (*models.ScheduleResponse, error)
	CreateBlock(ctx context.Context, req *models.CreateBlockRequest) (*models.ScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
