package delete_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonflow/scheduling-service/internal/api/handlers"
	"github.com/salonflow/scheduling-service/internal/service/schedules"
)

const (
	msgInvalidScheduleID = "некорректный ID элемента расписания"
	msgNotFound          = "элемент расписания не найден"
)

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

// Handle DELETE /api/v1/schedules/{scheduleId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := strconv.ParseInt(mux.Vars(r)["scheduleId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /schedules/{id} - Invalid schedule ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidScheduleID)
		return
	}

	if err := h.service.Delete(r.Context(), scheduleID); err != nil {
		switch {
		case errors.Is(err, schedules.ErrScheduleNotFound):
			h.logger.Warn("DELETE /schedules/{id} - Schedule entry not found: schedule_id=%d", scheduleID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("DELETE /schedules/{id} - Failed to delete schedule entry: schedule_id=%d, error=%v",
				scheduleID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /schedules/{id} - Schedule entry deleted: schedule_id=%d", scheduleID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
