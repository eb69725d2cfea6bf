package settings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/salonflow/scheduling-service/internal/domain"
	"github.com/salonflow/scheduling-service/pkg/dbmetrics"
	"github.com/salonflow/scheduling-service/pkg/psqlbuilder"
)

var settingsColumns = []string{
	"id",
	"location_id",
	"granularity_minutes",
	"advance_booking_days",
	"min_notice_minutes",
	"created_at",
	"updated_at",
}

// Repository репозиторий настроек бронирования
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetForLocation получает настройки бронирования для филиала.
// Иерархия разрешения: настройки филиала → глобальные настройки →
// значения по умолчанию. Метод никогда не возвращает ErrSettingsNotFound.
func (r *Repository) GetForLocation(ctx context.Context, locationID int64) (*domain.BookingSettings, error) {
	found, err := r.getByLocation(ctx, &locationID)
	if err != nil {
		return nil, err
	}
	if found != nil {
		return found, nil
	}

	global, err := r.getByLocation(ctx, nil)
	if err != nil {
		return nil, err
	}
	if global != nil {
		return global, nil
	}

	return domain.DefaultBookingSettings(), nil
}

// Upsert создает или обновляет настройки для филиала
// (или глобальные при LocationID == nil)
func (r *Repository) Upsert(ctx context.Context, s *domain.BookingSettings) (*domain.BookingSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_settings").
		Columns(
			"location_id",
			"granularity_minutes",
			"advance_booking_days",
			"min_notice_minutes",
		).
		Values(
			s.LocationID,
			s.GranularityMinutes,
			s.AdvanceBookingDays,
			s.MinNoticeMinutes,
		).
		Suffix(`ON CONFLICT (COALESCE(location_id, 0)) DO UPDATE SET
			granularity_minutes = EXCLUDED.granularity_minutes,
			advance_booking_days = EXCLUDED.advance_booking_days,
			min_notice_minutes = EXCLUDED.min_notice_minutes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return s, nil
}

// getByLocation возвращает строку настроек для конкретного филиала
// (или глобальную при locationID == nil); nil без ошибки, если строки нет
func (r *Repository) getByLocation(ctx context.Context, locationID *int64) (*domain.BookingSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(settingsColumns...).
		From("booking_settings")

	if locationID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"location_id": *locationID})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"location_id": nil})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getByLocation - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.BookingSettings
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.LocationID,
		&s.GranularityMinutes,
		&s.AdvanceBookingDays,
		&s.MinNoticeMinutes,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getByLocation - scan settings: %v", ErrScanRow, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}
