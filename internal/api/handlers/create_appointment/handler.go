package create_appointment

import (
	"errors"
	"net/http"

	"github.com/salonflow/scheduling-service/internal/api/handlers"
	"github.com/salonflow/scheduling-service/internal/api/middleware"
	createAppointment "github.com/salonflow/scheduling-service/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidStartTime    = "некорректный формат времени начала, ожидается RFC 3339"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgStaffNotFound       = "мастер не найден"
	msgServiceNotFound     = "услуга не найдена"
	msgLocationNotFound    = "салон не найден"
	msgRoomNotFound        = "кабинет не найден"
	msgServiceNotProvided  = "мастер не оказывает эту услугу"
	msgServiceInactive     = "услуга недоступна"
	msgInvalidDate         = "некорректная дата записи"
	msgDateTooFar          = "дата записи слишком далеко в будущем"
	msgTooLateToBook       = "слишком поздно для записи на этот слот"
	msgScheduleConflict    = "выбранный интервал недоступен"
	msgConcurrencyConflict = "не удалось создать запись из-за конкурентных изменений, запросите слоты заново"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	clientID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(clientID)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse start time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStartTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		// Конфликт расписания: 409 с машинно-читаемой причиной
		if conflictErr, ok := createAppointment.AsConflictError(err); ok {
			h.logger.Warn("POST /appointments - Schedule conflict: client_id=%d, staff_id=%d, reason=%s",
				clientID, req.StaffID, conflictErr.Reason)
			handlers.RespondConflict(w, msgScheduleConflict, string(conflictErr.Reason))
			return
		}

		switch {
		case errors.Is(err, createAppointment.ErrConcurrencyConflict):
			h.logger.Warn("POST /appointments - Concurrency conflict: client_id=%d, staff_id=%d",
				clientID, req.StaffID)
			handlers.RespondError(w, http.StatusConflict, msgConcurrencyConflict)

		case errors.Is(err, createAppointment.ErrStaffNotFound):
			h.logger.Warn("POST /appointments - Staff not found: staff_id=%d", req.StaffID)
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, createAppointment.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createAppointment.ErrLocationNotFound):
			h.logger.Warn("POST /appointments - Location not found: location_id=%d", req.LocationID)
			handlers.RespondNotFound(w, msgLocationNotFound)

		case errors.Is(err, createAppointment.ErrRoomNotFound):
			h.logger.Warn("POST /appointments - Room not found: client_id=%d, staff_id=%d", clientID, req.StaffID)
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, createAppointment.ErrServiceNotProvided):
			h.logger.Warn("POST /appointments - Service not provided: staff_id=%d, service_id=%d",
				req.StaffID, req.ServiceID)
			handlers.RespondBadRequest(w, msgServiceNotProvided)

		case errors.Is(err, createAppointment.ErrServiceInactive):
			h.logger.Warn("POST /appointments - Service inactive: service_id=%d", req.ServiceID)
			handlers.RespondBadRequest(w, msgServiceInactive)

		case errors.Is(err, createAppointment.ErrInvalidDate):
			h.logger.Warn("POST /appointments - Invalid date: client_id=%d, staff_id=%d", clientID, req.StaffID)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, createAppointment.ErrDateTooFarInFuture):
			h.logger.Warn("POST /appointments - Date too far in future: client_id=%d, staff_id=%d", clientID, req.StaffID)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createAppointment.ErrTooLateToBook):
			h.logger.Warn("POST /appointments - Too late to book: client_id=%d, staff_id=%d", clientID, req.StaffID)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: client_id=%d, error=%v", clientID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: client_id=%d, staff_id=%d, error=%v",
				clientID, req.StaffID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /appointments - Appointment created: appointment_id=%d, client_id=%d, staff_id=%d",
		result.ID, clientID, req.StaffID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
