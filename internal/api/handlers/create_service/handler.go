package create_service

import (
	"errors"
	"net/http"

	"github.com/salonflow/scheduling-service/internal/api/handlers"
	"github.com/salonflow/scheduling-service/internal/service/catalog"
	"github.com/salonflow/scheduling-service/internal/service/catalog/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDefinition  = "некорректное определение услуги"
	msgRoomNotFound       = "кабинет не найден"
)

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/services
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateServiceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /services - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreateService(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidInput):
			h.logger.Warn("POST /services - Invalid service definition: name=%s, error=%v", req.Name, err)
			handlers.RespondBadRequest(w, msgInvalidDefinition)

		case errors.Is(err, catalog.ErrRoomNotFound):
			h.logger.Warn("POST /services - Room not found: name=%s", req.Name)
			handlers.RespondNotFound(w, msgRoomNotFound)

		default:
			h.logger.Error("POST /services - Failed to create service: name=%s, error=%v", req.Name, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /services - Service created: service_id=%d, name=%s", result.ID, req.Name)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
