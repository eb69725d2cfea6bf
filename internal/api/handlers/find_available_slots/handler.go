package find_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/salonflow/scheduling-service/internal/api/handlers"
	findAvailableSlots "github.com/salonflow/scheduling-service/internal/usecase/find_available_slots"
)

const (
	msgInvalidStaffID     = "некорректный ID мастера"
	msgInvalidServiceID   = "некорректный ID услуги"
	msgInvalidLocationID  = "некорректный ID салона"
	msgMissingServiceID   = "ID услуги обязателен"
	msgMissingLocationID  = "ID салона обязателен"
	msgMissingDate        = "дата обязательна"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidGranularity = "некорректный шаг сетки слотов"
	msgStaffNotFound      = "мастер не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgLocationNotFound   = "салон не найден"
	msgServiceNotProvided = "мастер не оказывает эту услугу"
	msgServiceInactive    = "услуга недоступна"
	msgDateInPast         = "дата в прошлом"
	msgDateTooFar         = "дата слишком далеко в будущем"
)

type Handler struct {
	useCase FindAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase FindAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/staff/{staffId}/available-slots
// Query params: serviceId (required), locationId (required),
// date (required, YYYY-MM-DD), granularity (optional, minutes)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	staffID, err := strconv.ParseInt(vars["staffId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /staff/{id}/available-slots - Invalid staff ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return
	}

	query := r.URL.Query()

	serviceIDStr := query.Get("serviceId")
	if serviceIDStr == "" {
		h.logger.Warn("GET /staff/{id}/available-slots - Missing service ID")
		handlers.RespondBadRequest(w, msgMissingServiceID)
		return
	}
	serviceID, err := strconv.ParseInt(serviceIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /staff/{id}/available-slots - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	locationIDStr := query.Get("locationId")
	if locationIDStr == "" {
		h.logger.Warn("GET /staff/{id}/available-slots - Missing location ID")
		handlers.RespondBadRequest(w, msgMissingLocationID)
		return
	}
	locationID, err := strconv.ParseInt(locationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /staff/{id}/available-slots - Invalid location ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLocationID)
		return
	}

	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /staff/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	granularity := 0
	if granularityStr := query.Get("granularity"); granularityStr != "" {
		granularity, err = strconv.Atoi(granularityStr)
		if err != nil || granularity < 0 {
			h.logger.Warn("GET /staff/{id}/available-slots - Invalid granularity: %s", granularityStr)
			handlers.RespondBadRequest(w, msgInvalidGranularity)
			return
		}
	}

	useCaseReq, err := ToUseCaseRequest(staffID, serviceID, locationID, dateStr, granularity)
	if err != nil {
		h.logger.Warn("GET /staff/{id}/available-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, findAvailableSlots.ErrStaffNotFound):
			h.logger.Warn("GET /staff/{id}/available-slots - Staff not found: staff_id=%d", staffID)
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, findAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /staff/{id}/available-slots - Service not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, findAvailableSlots.ErrLocationNotFound):
			h.logger.Warn("GET /staff/{id}/available-slots - Location not found: location_id=%d", locationID)
			handlers.RespondNotFound(w, msgLocationNotFound)

		case errors.Is(err, findAvailableSlots.ErrServiceNotProvided):
			h.logger.Warn("GET /staff/{id}/available-slots - Service not provided: staff_id=%d, service_id=%d",
				staffID, serviceID)
			handlers.RespondBadRequest(w, msgServiceNotProvided)

		case errors.Is(err, findAvailableSlots.ErrServiceInactive):
			h.logger.Warn("GET /staff/{id}/available-slots - Service inactive: service_id=%d", serviceID)
			handlers.RespondBadRequest(w, msgServiceInactive)

		case errors.Is(err, findAvailableSlots.ErrInvalidDate):
			h.logger.Warn("GET /staff/{id}/available-slots - Date in past: staff_id=%d, date=%s", staffID, dateStr)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, findAvailableSlots.ErrDateTooFarInFuture):
			h.logger.Warn("GET /staff/{id}/available-slots - Date too far: staff_id=%d, date=%s", staffID, dateStr)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, findAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /staff/{id}/available-slots - Invalid input: staff_id=%d, error=%v", staffID, err)
			handlers.RespondBadRequest(w, msgInvalidStaffID)

		default:
			h.logger.Error("GET /staff/{id}/available-slots - Failed to get slots: staff_id=%d, service_id=%d, error=%v",
				staffID, serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /staff/{id}/available-slots - Slots retrieved: staff_id=%d, service_id=%d, date=%s, slots_count=%d, from_cache=%t",
		staffID, serviceID, dateStr, len(result.Slots), result.FromCache)
	handlers.RespondJSON(w, http.StatusOK, response)
}
