package booking

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
)

func newRepoMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewRepository(db), mock, func() { db.Close() }
}

func testBooking() *domain.Booking {
	return &domain.Booking{
		TeacherID:   10,
		StudentID:   20,
		Subject:     "mathematics",
		BookingDate: time.Date(2024, time.June, 17, 0, 0, 0, 0, time.UTC),
		StartTime:   "09:00",
		EndTime:     "10:00",
		StartUTC:    time.Date(2024, time.June, 17, 13, 0, 0, 0, time.UTC),
		EndUTC:      time.Date(2024, time.June, 17, 14, 0, 0, 0, time.UTC),
	}
}

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "teacher_id", "student_id", "subject", "module_id",
		"booking_date", "start_time", "end_time", "start_utc", "end_utc",
		"status", "notes", "cancellation_reason", "cancelled_at", "created_at", "updated_at",
	})
}

func TestTryCreate_Success(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(
			int64(10), int64(20), "mathematics", nil,
			sqlmock.AnyArg(), "09:00", "10:00",
			sqlmock.AnyArg(), sqlmock.AnyArg(),
			string(domain.StatusPending), nil,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	created, err := repo.TryCreate(context.Background(), testBooking())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryCreate_SlotTaken(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	// Нарушение частичного уникального индекса активных слотов
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&pq.Error{Code: pgUniqueViolation, Constraint: activeSlotIndex})

	_, err := repo.TryCreate(context.Background(), testBooking())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryCreate_OtherUniqueViolationNotMasked(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	// Нарушение другого индекса не должно превращаться в ErrSlotTaken
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&pq.Error{Code: pgUniqueViolation, Constraint: "bookings_pkey"})

	_, err := repo.TryCreate(context.Background(), testBooking())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSlotTaken)
	assert.ErrorIs(t, err, ErrExecQuery)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryCreate_DriverErrorStaysInChain(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	// Конфликт сериализации должен остаться доступным через errors.As,
	// иначе менеджер транзакций не сможет повторить транзакцию
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&pq.Error{Code: "40001"})

	_, err := repo.TryCreate(context.Background(), testBooking())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecQuery)

	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, "40001", string(pqErr.Code))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_Success(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	rows := bookingRows().AddRow(
		int64(1), int64(10), int64(20), "mathematics", nil,
		time.Date(2024, time.June, 17, 0, 0, 0, 0, time.UTC), "09:00", "10:00",
		now, now.Add(time.Hour),
		string(domain.StatusConfirmed), nil, nil, nil, now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.TeacherID)
	assert.Equal(t, int64(20), got.StudentID)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_CASSuccess(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
		WithArgs(string(domain.StatusConfirmed), int64(1), string(domain.StatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), 1, domain.StatusPending, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_StatusConflict(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	// CAS не прошёл: запись есть, но статус уже изменился конкурентно
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	now := time.Now()
	rows := bookingRows().AddRow(
		int64(1), int64(10), int64(20), "mathematics", nil,
		time.Date(2024, time.June, 17, 0, 0, 0, 0, time.UTC), "09:00", "10:00",
		now, now.Add(time.Hour),
		string(domain.StatusCancelled), nil, nil, nil, now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	err := repo.UpdateStatus(context.Background(), 1, domain.StatusPending, domain.StatusConfirmed)
	assert.ErrorIs(t, err, ErrStatusConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(int64(777)).
		WillReturnError(sql.ErrNoRows)

	err := repo.UpdateStatus(context.Background(), 777, domain.StatusPending, domain.StatusConfirmed)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_Success(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
		WithArgs(string(domain.StatusCancelled), "not needed anymore", int64(1), string(domain.StatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Cancel(context.Background(), 1, domain.StatusPending, "not needed anymore")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByTeacherID_WithStatusFilter(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	rows := bookingRows().AddRow(
		int64(2), int64(10), int64(21), "physics", nil,
		time.Date(2024, time.June, 18, 0, 0, 0, 0, time.UTC), "11:00", "12:00",
		now, now.Add(time.Hour),
		string(domain.StatusPending), nil, nil, nil, now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(int64(10), string(domain.StatusPending)).
		WillReturnRows(rows)

	status := domain.StatusPending
	got, err := repo.GetByTeacherID(context.Background(), 10, &status)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByStudentID_Empty(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(int64(20)).
		WillReturnRows(bookingRows())

	got, err := repo.GetByStudentID(context.Background(), 20, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
