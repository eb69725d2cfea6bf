package create_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonflow/scheduling-service/internal/api/handlers"
	"github.com/salonflow/scheduling-service/internal/service/schedules"
	"github.com/salonflow/scheduling-service/internal/service/schedules/models"
)

const (
	msgInvalidStaffID     = "некорректный ID мастера"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidWindow      = "время начала должно быть раньше времени окончания"
	msgStaffNotFound      = "мастер не найден"
	msgLocationNotFound   = "салон не найден"
	msgInvalidInput       = "некорректные данные расписания"
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

// HandleWindow POST /api/v1/staff/{staffId}/schedules
func (h *Handler) HandleWindow(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.parseStaffID(w, r, "POST /staff/{id}/schedules")
	if !ok {
		return
	}

	var req models.CreateWindowRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /staff/{id}/schedules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.StaffID = staffID

	result, err := h.service.CreateWindow(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, "POST /staff/{id}/schedules", staffID, err)
		return
	}

	h.logger.Info("POST /staff/{id}/schedules - Window created: schedule_id=%d, staff_id=%d",
		result.ID, staffID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// HandleBlock POST /api/v1/staff/{staffId}/blocks
func (h *Handler) HandleBlock(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.parseStaffID(w, r, "POST /staff/{id}/blocks")
	if !ok {
		return
	}

	var req models.CreateBlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /staff/{id}/blocks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.StaffID = staffID

	result, err := h.service.CreateBlock(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, "POST /staff/{id}/blocks", staffID, err)
		return
	}

	h.logger.Info("POST /staff/{id}/blocks - Block created: schedule_id=%d, staff_id=%d, date=%s",
		result.ID, staffID, result.StartDate)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) parseStaffID(w http.ResponseWriter, r *http.Request, route string) (int64, bool) {
	staffID, err := strconv.ParseInt(mux.Vars(r)["staffId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s - Invalid staff ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return 0, false
	}
	return staffID, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, route string, staffID int64, err error) {
	switch {
	case errors.Is(err, schedules.ErrStaffNotFound):
		h.logger.Warn("%s - Staff not found: staff_id=%d", route, staffID)
		handlers.RespondNotFound(w, msgStaffNotFound)

	case errors.Is(err, schedules.ErrLocationNotFound):
		h.logger.Warn("%s - Location not found: staff_id=%d", route, staffID)
		handlers.RespondNotFound(w, msgLocationNotFound)

	case errors.Is(err, schedules.ErrInvalidTimeWindow):
		h.logger.Warn("%s - Invalid time window: staff_id=%d", route, staffID)
		handlers.RespondBadRequest(w, msgInvalidWindow)

	case errors.Is(err, schedules.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: staff_id=%d, error=%v", route, staffID, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	default:
		h.logger.Error("%s - Failed to create schedule entry: staff_id=%d, error=%v", route, staffID, err)
		handlers.RespondInternalError(w)
	}
}
