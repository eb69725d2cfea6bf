package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/salonflow/scheduling-service/internal/domain"
	"github.com/salonflow/scheduling-service/pkg/dbmetrics"
	"github.com/salonflow/scheduling-service/pkg/psqlbuilder"
)

// Repository репозиторий для работы со справочниками:
// услуги, мастера, кабинеты, филиалы
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория справочников
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateService создает услугу
func (r *Repository) CreateService(ctx context.Context, svc *domain.Service) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("services").
		Columns(
			"name",
			"category",
			"duration_minutes",
			"buffer_before_minutes",
			"buffer_after_minutes",
			"room_id",
			"active",
		).
		Values(
			svc.Name,
			svc.Category,
			svc.DurationMinutes,
			svc.BufferBeforeMinutes,
			svc.BufferAfterMinutes,
			svc.RoomID,
			svc.Active,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateService - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&svc.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: CreateService - execute insert: %v", ErrExecQuery, err)
	}

	svc.CreatedAt = createdAt.Time
	svc.UpdatedAt = updatedAt.Time

	return svc, nil
}

// GetService получает услугу по ID
func (r *Repository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"category",
		"duration_minutes",
		"buffer_before_minutes",
		"buffer_after_minutes",
		"room_id",
		"active",
		"created_at",
		"updated_at",
	).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var svc domain.Service
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&svc.ID,
		&svc.Name,
		&svc.Category,
		&svc.DurationMinutes,
		&svc.BufferBeforeMinutes,
		&svc.BufferAfterMinutes,
		&svc.RoomID,
		&svc.Active,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %v", ErrScanRow, err)
	}

	svc.CreatedAt = createdAt.Time
	svc.UpdatedAt = updatedAt.Time

	return &svc, nil
}

// GetStaff получает мастера по ID
func (r *Repository) GetStaff(ctx context.Context, id int64) (*domain.StaffMember, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "active", "created_at", "updated_at").
		From("staff_members").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - build select query: %v", ErrBuildQuery, err)
	}

	var staff domain.StaffMember
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&staff.ID,
		&staff.Name,
		&staff.Active,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - scan staff member: %v", ErrScanRow, err)
	}

	staff.CreatedAt = createdAt.Time
	staff.UpdatedAt = updatedAt.Time

	return &staff, nil
}

// StaffCanPerform проверяет, что мастер оказывает указанную услугу
func (r *Repository) StaffCanPerform(ctx context.Context, staffID, serviceID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("staff_services").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.Eq{"service_id": serviceID}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: StaffCanPerform - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: StaffCanPerform - scan row: %v", ErrScanRow, err)
	}

	return true, nil
}

// GetRoom получает кабинет по ID
func (r *Repository) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "location_id", "name").
		From("rooms").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetRoom - build select query: %v", ErrBuildQuery, err)
	}

	var room domain.Room
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&room.ID,
		&room.LocationID,
		&room.Name,
	)

	if err == sql.ErrNoRows {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetRoom - scan room: %v", ErrScanRow, err)
	}

	return &room, nil
}

// GetLocation получает филиал по ID
func (r *Repository) GetLocation(ctx context.Context, id int64) (*domain.Location, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "timezone").
		From("locations").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetLocation - build select query: %v", ErrBuildQuery, err)
	}

	var loc domain.Location
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&loc.ID,
		&loc.Name,
		&loc.Timezone,
	)

	if err == sql.ErrNoRows {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetLocation - scan location: %v", ErrScanRow, err)
	}

	return &loc, nil
}
