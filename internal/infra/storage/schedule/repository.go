package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/salonflow/scheduling-service/internal/domain"
	"github.com/salonflow/scheduling-service/pkg/dbmetrics"
	"github.com/salonflow/scheduling-service/pkg/psqlbuilder"
)

var scheduleColumns = []string{
	"id",
	"staff_id",
	"day_of_week",
	"start_time",
	"end_time",
	"location_id",
	"service_categories",
	"start_date",
	"end_date",
	"is_blocked",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с расписаниями мастеров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает элемент расписания (рабочее окно или блокировку)
func (r *Repository) Create(ctx context.Context, entry *domain.StaffSchedule) (*domain.StaffSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("staff_schedules").
		Columns(
			"staff_id",
			"day_of_week",
			"start_time",
			"end_time",
			"location_id",
			"service_categories",
			"start_date",
			"end_date",
			"is_blocked",
		).
		Values(
			entry.StaffID,
			int(entry.DayOfWeek),
			entry.StartTime,
			entry.EndTime,
			entry.LocationID,
			pq.Array(entry.ServiceCategories),
			entry.StartDate,
			entry.EndDate,
			entry.IsBlocked,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&entry.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time

	return entry, nil
}

// GetByID получает элемент расписания по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.StaffSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(scheduleColumns...).
		From("staff_schedules").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	entry, err := scanScheduleRow(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan schedule entry: %v", ErrScanRow, err)
	}

	return entry, nil
}

// GetForDate получает элементы расписания мастера, действующие на указанную дату.
// Фильтрует по дню недели и диапазону действия [start_date, end_date];
// фильтрация по филиалу и категории услуги выполняется на уровне домена.
func (r *Repository) GetForDate(ctx context.Context, staffID int64, date time.Time) ([]*domain.StaffSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	query, args, err := psqlbuilder.Select(scheduleColumns...).
		From("staff_schedules").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.Eq{"day_of_week": int(date.Weekday())}).
		Where(squirrel.LtOrEq{"start_date": day}).
		Where(squirrel.Or{
			squirrel.Eq{"end_date": nil},
			squirrel.GtOrEq{"end_date": day},
		}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetForDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetForDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanScheduleRows(rows)
}

// GetByStaffID получает все элементы расписания мастера
func (r *Repository) GetByStaffID(ctx context.Context, staffID int64) ([]*domain.StaffSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(scheduleColumns...).
		From("staff_schedules").
		Where(squirrel.Eq{"staff_id": staffID}).
		OrderBy("day_of_week ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByStaffID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStaffID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanScheduleRows(rows)
}

// Delete удаляет элемент расписания
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("staff_schedules").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrScheduleNotFound
	}

	return nil
}

func scanScheduleRow(row *sql.Row) (*domain.StaffSchedule, error) {
	var entry domain.StaffSchedule
	var dayOfWeek int
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&entry.ID,
		&entry.StaffID,
		&dayOfWeek,
		&entry.StartTime,
		&entry.EndTime,
		&entry.LocationID,
		pq.Array(&entry.ServiceCategories),
		&entry.StartDate,
		&entry.EndDate,
		&entry.IsBlocked,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.DayOfWeek = time.Weekday(dayOfWeek)
	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time

	return &entry, nil
}

func scanScheduleRows(rows *sql.Rows) ([]*domain.StaffSchedule, error) {
	entries := make([]*domain.StaffSchedule, 0)

	for rows.Next() {
		var entry domain.StaffSchedule
		var dayOfWeek int
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&entry.ID,
			&entry.StaffID,
			&dayOfWeek,
			&entry.StartTime,
			&entry.EndTime,
			&entry.LocationID,
			pq.Array(&entry.ServiceCategories),
			&entry.StartDate,
			&entry.EndDate,
			&entry.IsBlocked,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanScheduleRows - scan row: %v", ErrScanRow, err)
		}

		entry.DayOfWeek = time.Weekday(dayOfWeek)
		entry.CreatedAt = createdAt.Time
		entry.UpdatedAt = updatedAt.Time

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanScheduleRows - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}
