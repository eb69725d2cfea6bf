package update_payment_status

import (
	"context"

	"github.com/salonflow/scheduling-service/internal/service/appointments/models"
)

type AppointmentService interface {
	UpdatePaymentStatus(ctx context.Context, id int64, req *models.UpdatePaymentStatusRequest) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
