package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/salonflow/scheduling-service/internal/domain"
	"github.com/salonflow/scheduling-service/pkg/dbmetrics"
	"github.com/salonflow/scheduling-service/pkg/psqlbuilder"
	"github.com/salonflow/scheduling-service/pkg/timerange"
)

// Имена exclusion-констрейнтов из миграций.
// По ним ошибка 23P01 разворачивается в конкретную причину конфликта.
const (
	constraintStaffNoOverlap = "appointments_staff_no_overlap"
	constraintRoomNoOverlap  = "appointments_room_no_overlap"
)

const pgExclusionViolation = "23P01"

var appointmentColumns = []string{
	"id",
	"client_id",
	"staff_id",
	"service_id",
	"room_id",
	"location_id",
	"start_time",
	"end_time",
	"occupied_from",
	"occupied_until",
	"status",
	"payment_status",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"reminder_sent_at",
	"follow_up_sent_at",
	"created_at",
	"updated_at",
}

// OccupancyFilter фильтр выборки занятых интервалов.
// Заполняется StaffID и/или RoomID; условия объединяются через OR,
// поэтому один запрос покрывает и мастера, и кабинет.
type OccupancyFilter struct {
	StaffID *int64
	RoomID  *int64
	From    time.Time
	To      time.Time
}

// Repository репозиторий для работы с записями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись
// Если в контексте передана активная транзакция (через context.Value), использует её.
//
// Занятая зона [occupied_from, occupied_until) защищена exclusion-констрейнтами:
// пересечение по мастеру или кабинету приводит к ошибке 23P01, которую метод
// разворачивает в ErrStaffOverlap / ErrRoomOverlap. Это страховка на случай,
// когда две транзакции прошли проверку доступности одновременно.
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"client_id",
			"staff_id",
			"service_id",
			"room_id",
			"location_id",
			"start_time",
			"end_time",
			"occupied_from",
			"occupied_until",
			"status",
			"payment_status",
			"notes",
		).
		Values(
			appt.ClientID,
			appt.StaffID,
			appt.ServiceID,
			appt.RoomID,
			appt.LocationID,
			appt.StartTime,
			appt.EndTime,
			appt.OccupiedFrom,
			appt.OccupiedUntil,
			appt.Status,
			appt.PaymentStatus,
			appt.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appt.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if overlapErr := mapExclusionError(err); overlapErr != nil {
			return nil, overlapErr
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return appt, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := r.scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return appt, nil
}

// GetOccupiedRanges получает занятые интервалы [occupied_from, occupied_until)
// мастера и/или кабинета, пересекающие период [from, to).
// Учитываются только статусы, занимающие время (отменённые и no-show не блокируют).
//
// Внутри активной транзакции добавляется FOR UPDATE: строки блокируются на время
// проверки доступности, чтобы параллельное создание записи их не изменило.
func (r *Repository) GetOccupiedRanges(ctx context.Context, filter OccupancyFilter) ([]timerange.Range, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	owners := squirrel.Or{}
	if filter.StaffID != nil {
		owners = append(owners, squirrel.Eq{"staff_id": *filter.StaffID})
	}
	if filter.RoomID != nil {
		owners = append(owners, squirrel.Eq{"room_id": *filter.RoomID})
	}
	if len(owners) == 0 {
		return nil, fmt.Errorf("%w: GetOccupiedRanges - filter requires staff_id or room_id", ErrBuildQuery)
	}

	selectBuilder := psqlbuilder.Select("occupied_from", "occupied_until").
		From("appointments").
		Where(owners).
		Where(squirrel.Eq{"status": occupyingStatusStrings()}).
		Where(squirrel.Lt{"occupied_from": filter.To}).
		Where(squirrel.Gt{"occupied_until": filter.From}).
		OrderBy("occupied_from ASC")

	// Если используется транзакция, блокируем строки на время проверки доступности
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOccupiedRanges - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOccupiedRanges - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ranges := make([]timerange.Range, 0)
	for rows.Next() {
		var rng timerange.Range
		if err := rows.Scan(&rng.Start, &rng.End); err != nil {
			return nil, fmt.Errorf("%w: GetOccupiedRanges - scan range: %v", ErrScanRow, err)
		}
		ranges = append(ranges, rng)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetOccupiedRanges - rows error: %v", ErrScanRow, err)
	}

	return ranges, nil
}

// GetByStaffWithFilter получает записи мастера с гибкой фильтрацией
// Поддерживает фильтрацию по периоду (StartDate, EndDate), статусу
// и включению неактивных записей (IncludeInactive).
func (r *Repository) GetByStaffWithFilter(ctx context.Context, filter domain.StaffAppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"staff_id": filter.StaffID})

	// Фильтрация по периоду
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"start_time": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": *filter.EndDate})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		// Если не указан конкретный статус и не нужны неактивные - исключаем их
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings})
	}

	selectBuilder = selectBuilder.OrderBy("start_time ASC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStaffWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStaffWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// GetByClientID получает список записей клиента
// Опционально фильтрует по статусу
func (r *Repository) GetByClientID(ctx context.Context, clientID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"client_id": clientID}).
		OrderBy("start_time DESC")

	// Фильтрация по статусу, если указан
	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// UpdateStatus обновляет статус записи
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateStatus", query, args)
}

// Cancel отменяет запись с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string, cancelledAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", cancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "Cancel", query, args)
}

// UpdatePaymentStatus обновляет статус оплаты записи
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("payment_status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdatePaymentStatus", query, args)
}

// GetDueReminders получает подтверждённые записи, начинающиеся в периоде [from, to),
// по которым ещё не отправлялось напоминание
func (r *Repository) GetDueReminders(ctx context.Context, from, to time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"status": domain.StatusConfirmed}).
		Where(squirrel.GtOrEq{"start_time": from}).
		Where(squirrel.Lt{"start_time": to}).
		Where(squirrel.Eq{"reminder_sent_at": nil}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetDueReminders - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetDueReminders - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// MarkReminderSent отмечает, что напоминание по записи отправлено
func (r *Repository) MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("reminder_sent_at", sentAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkReminderSent - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "MarkReminderSent", query, args)
}

// GetDueFollowUps получает завершённые записи, закончившиеся не позже before,
// по которым ещё не отправлялось follow-up сообщение
func (r *Repository) GetDueFollowUps(ctx context.Context, before time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"status": domain.StatusCompleted}).
		Where(squirrel.LtOrEq{"end_time": before}).
		Where(squirrel.Eq{"follow_up_sent_at": nil}).
		OrderBy("end_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetDueFollowUps - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetDueFollowUps - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// MarkFollowUpSent отмечает, что follow-up сообщение по записи отправлено
func (r *Repository) MarkFollowUpSent(ctx context.Context, id int64, sentAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("follow_up_sent_at", sentAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkFollowUpSent - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "MarkFollowUpSent", query, args)
}

// execAffectingOne выполняет update и проверяет, что затронута ровно одна строка
func (r *Repository) execAffectingOne(ctx context.Context, executor DBExecutor, method, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// scanAppointment сканирует одну строку результата в запись
func (r *Repository) scanAppointment(row *sql.Row) (*domain.Appointment, error) {
	var appt domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&appt.ID,
		&appt.ClientID,
		&appt.StaffID,
		&appt.ServiceID,
		&appt.RoomID,
		&appt.LocationID,
		&appt.StartTime,
		&appt.EndTime,
		&appt.OccupiedFrom,
		&appt.OccupiedUntil,
		&appt.Status,
		&appt.PaymentStatus,
		&appt.Notes,
		&appt.CancellationReason,
		&appt.CancelledAt,
		&appt.ReminderSentAt,
		&appt.FollowUpSentAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return &appt, nil
}

// scanAppointments сканирует результаты запроса в слайс записей
func (r *Repository) scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		var appt domain.Appointment
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&appt.ID,
			&appt.ClientID,
			&appt.StaffID,
			&appt.ServiceID,
			&appt.RoomID,
			&appt.LocationID,
			&appt.StartTime,
			&appt.EndTime,
			&appt.OccupiedFrom,
			&appt.OccupiedUntil,
			&appt.Status,
			&appt.PaymentStatus,
			&appt.Notes,
			&appt.CancellationReason,
			&appt.CancelledAt,
			&appt.ReminderSentAt,
			&appt.FollowUpSentAt,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}

		appt.CreatedAt = createdAt.Time
		appt.UpdatedAt = updatedAt.Time

		appointments = append(appointments, &appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

// mapExclusionError разворачивает нарушение exclusion-констрейнта в доменную ошибку конфликта
func mapExclusionError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pgExclusionViolation {
		return nil
	}

	switch pqErr.Constraint {
	case constraintStaffNoOverlap:
		return ErrStaffOverlap
	case constraintRoomNoOverlap:
		return ErrRoomOverlap
	default:
		return nil
	}
}

// occupyingStatusStrings возвращает статусы, занимающие время, как []string для squirrel.Eq
func occupyingStatusStrings() []string {
	out := make([]string, len(domain.OccupyingStatuses))
	for i, s := range domain.OccupyingStatuses {
		out[i] = string(s)
	}
	return out
}
