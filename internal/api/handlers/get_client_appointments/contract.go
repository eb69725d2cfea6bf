package get_client_appointments

import (
	"context"

	"github.com/salonflow/scheduling-service/internal/service/appointments/models"
)

type AppointmentService interface {
	GetClientAppointments(ctx context.Context, clientID int64, status *string) (*models.AppointmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
