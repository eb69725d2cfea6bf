package list_schedules

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonflow/scheduling-service/internal/api/handlers"
)

const msgInvalidStaffID = "некорректный ID мастера"

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/staff/{staffId}/schedules
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	staffID, err := strconv.ParseInt(mux.Vars(r)["staffId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /staff/{id}/schedules - Invalid staff ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return
	}

	result, err := h.service.ListByStaff(r.Context(), staffID)
	if err != nil {
		h.logger.Error("GET /staff/{id}/schedules - Failed to list schedules: staff_id=%d, error=%v", staffID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /staff/{id}/schedules - Schedules retrieved: staff_id=%d, count=%d",
		staffID, len(result.Schedules))
	handlers.RespondJSON(w, http.StatusOK, result)
}
