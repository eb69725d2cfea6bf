package catalog

import (
	"context"
	"errors"
	"fmt"

	catalogRepo "github.com/salonflow/scheduling-service/internal/infra/storage/catalog"
	"github.com/salonflow/scheduling-service/internal/service/catalog/models"
)

// Service сервис справочника услуг. Определение услуги валидируется при
// создании: резолвер слотов и проверка конфликтов полагаются на то, что
// длительность положительна, а буферы неотрицательны.
type Service struct {
	repo   Repository
	logger Logger
}

// NewService создает новый экземпляр сервиса справочника
func NewService(repo Repository, logger Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateService создает услугу
func (s *Service) CreateService(ctx context.Context, req *models.CreateServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("CreateService: creating service name=%s duration=%d", req.Name, req.DurationMinutes)

	svc := req.ToDomainService()
	if err := svc.Validate(); err != nil {
		s.logger.Warn("CreateService: invalid service definition name=%s: %v", req.Name, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if svc.RoomID != nil {
		if _, err := s.repo.GetRoom(ctx, *svc.RoomID); err != nil {
			if errors.Is(err, catalogRepo.ErrRoomNotFound) {
				s.logger.Warn("CreateService: room=%d not found", *svc.RoomID)
				return nil, ErrRoomNotFound
			}
			s.logger.Error("CreateService: repository error for room=%d: %v", *svc.RoomID, err)
			return nil, fmt.Errorf("%w: CreateService - repository error: %v", ErrInternal, err)
		}
	}

	created, err := s.repo.CreateService(ctx, svc)
	if err != nil {
		s.logger.Error("CreateService: failed to create service name=%s: %v", req.Name, err)
		return nil, fmt.Errorf("%w: CreateService - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateService: service id=%d created", created.ID)
	return models.FromDomainService(created), nil
}

// GetService получает услугу по ID
func (s *Service) GetService(ctx context.Context, id int64) (*models.ServiceResponse, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}

	svc, err := s.repo.GetService(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		s.logger.Error("GetService: repository error for service id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetService - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainService(svc), nil
}
