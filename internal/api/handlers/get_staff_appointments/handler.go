package get_staff_appointments

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/salonflow/scheduling-service/internal/api/handlers"
	"github.com/salonflow/scheduling-service/internal/service/appointments"
	"github.com/salonflow/scheduling-service/internal/service/appointments/models"
)

const (
	msgInvalidStaffID = "некорректный ID мастера"
	msgInvalidDate    = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidFilter  = "некорректные параметры фильтрации"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/staff/{staffId}/appointments
// Query params: startDate, endDate (YYYY-MM-DD), status, includeInactive
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	staffID, err := strconv.ParseInt(vars["staffId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /staff/{id}/appointments - Invalid staff ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return
	}

	query := r.URL.Query()
	req := &models.GetStaffAppointmentsRequest{StaffID: staffID}

	if startDateStr := query.Get("startDate"); startDateStr != "" {
		startDate, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			h.logger.Warn("GET /staff/{id}/appointments - Invalid start date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.StartDate = &startDate
	}

	if endDateStr := query.Get("endDate"); endDateStr != "" {
		endDate, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			h.logger.Warn("GET /staff/{id}/appointments - Invalid end date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.EndDate = &endDate
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if includeInactiveStr := query.Get("includeInactive"); includeInactiveStr != "" {
		req.IncludeInactive, _ = strconv.ParseBool(includeInactiveStr)
	}

	result, err := h.service.GetStaffAppointments(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /staff/{id}/appointments - Invalid filter: staff_id=%d, error=%v", staffID, err)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		default:
			h.logger.Error("GET /staff/{id}/appointments - Failed to get appointments: staff_id=%d, error=%v",
				staffID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /staff/{id}/appointments - Appointments retrieved: staff_id=%d, count=%d",
		staffID, len(result.Appointments))
	handlers.RespondJSON(w, http.StatusOK, result)
}
