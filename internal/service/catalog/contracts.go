package catalog

import (
	"context"

	"github.com/salonflow/scheduling-service/internal/domain"
)

// Repository интерфейс репозитория справочника
type Repository interface {
	CreateService(ctx context.Context, svc *domain.Service) (*domain.Service, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetRoom(ctx context.Context, id int64) (*domain.Room, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
