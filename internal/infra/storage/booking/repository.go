package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
	"github.com/ekazarov/TMS-BookingService/pkg/dbmetrics"
	"github.com/ekazarov/TMS-BookingService/pkg/psqlbuilder"
)

// pgUniqueViolation код ошибки PostgreSQL при нарушении уникального индекса
const pgUniqueViolation = "23505"

// activeSlotIndex имя частичного уникального индекса, защищающего слот
// от двойного бронирования
const activeSlotIndex = "uq_bookings_active_slot"

// bookingColumns полный список колонок таблицы bookings для SELECT запросов
var bookingColumns = []string{
	"id",
	"teacher_id",
	"student_id",
	"subject",
	"module_id",
	"booking_date",
	"start_time",
	"end_time",
	"start_utc",
	"end_utc",
	"status",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями.
// Единственная точка записи в таблицу bookings.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// TryCreate атомарно создает бронирование в статусе pending.
// Инвариант "не больше одного активного бронирования на слот" обеспечивает
// частичный уникальный индекс uq_bookings_active_slot: если слот уже занят
// активным (pending/confirmed) бронированием, БД отклонит вставку и метод
// вернет ErrSlotTaken. Отдельной проверки занятости перед вставкой нет
// намеренно - check-then-insert без атомарности допускал бы гонку.
func (r *Repository) TryCreate(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"teacher_id",
			"student_id",
			"subject",
			"module_id",
			"booking_date",
			"start_time",
			"end_time",
			"start_utc",
			"end_utc",
			"status",
			"notes",
		).
		Values(
			booking.TeacherID,
			booking.StudentID,
			booking.Subject,
			booking.ModuleID,
			booking.BookingDate,
			booking.StartTime,
			booking.EndTime,
			booking.StartUTC,
			booking.EndUTC,
			domain.StatusPending,
			booking.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: TryCreate - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isActiveSlotViolation(err) {
			return nil, ErrSlotTaken
		}
		// Ошибка драйвера остается в цепочке: менеджер транзакций различает
		// конфликты сериализации по коду pq и повторяет транзакцию
		return nil, fmt.Errorf("%w: TryCreate - execute insert: %w", ErrExecQuery, err)
	}

	booking.Status = domain.StatusPending
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByTeacherID получает список бронирований преподавателя, сначала самые свежие
// Опционально фильтрует по статусу
func (r *Repository) GetByTeacherID(ctx context.Context, teacherID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	return r.listBy(ctx, squirrel.Eq{"teacher_id": teacherID}, status, "GetByTeacherID")
}

// GetByStudentID получает список бронирований студента, сначала самые свежие
// Опционально фильтрует по статусу
func (r *Repository) GetByStudentID(ctx context.Context, studentID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	return r.listBy(ctx, squirrel.Eq{"student_id": studentID}, status, "GetByStudentID")
}

// UpdateStatus обновляет статус бронирования через compare-and-swap:
// запись меняется, только если её текущий статус равен from. Это защищает
// от потерянных обновлений, когда преподаватель и студент действуют
// одновременно (например, подтверждение против отмены).
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execCAS(ctx, executor, query, args, id, "UpdateStatus")
}

// Cancel отменяет бронирование с указанием причины (CAS по текущему статусу)
func (r *Repository) Cancel(ctx context.Context, id int64, from domain.BookingStatus, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execCAS(ctx, executor, query, args, id, "Cancel")
}

// execCAS выполняет UPDATE с условием по текущему статусу.
// Ноль затронутых строк означает, что либо записи нет, либо статус уже
// изменился конкурентно - различаем повторным чтением.
func (r *Repository) execCAS(ctx context.Context, executor DBExecutor, query string, args []interface{}, id int64, op string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrBookingNotFound) {
			return ErrBookingNotFound
		}
		return ErrStatusConflict
	}

	return nil
}

// listBy общий SELECT списка бронирований с сортировкой "сначала свежие"
func (r *Repository) listBy(ctx context.Context, where squirrel.Eq, status *domain.BookingStatus, op string) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(where).
		OrderBy("booking_date DESC, start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	return r.scanBookings(rows, op)
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку в бронирование
func (r *Repository) scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.TeacherID,
		&booking.StudentID,
		&booking.Subject,
		&booking.ModuleID,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.EndTime,
		&booking.StartUTC,
		&booking.EndUTC,
		&booking.Status,
		&booking.Notes,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows, op string) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return bookings, nil
}

// isActiveSlotViolation проверяет, что ошибка - нарушение индекса активного слота
func isActiveSlotViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == pgUniqueViolation && pqErr.Constraint == activeSlotIndex
}
