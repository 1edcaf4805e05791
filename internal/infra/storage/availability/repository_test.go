package availability

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

func TestGetProfile_NotFound(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT teacher_id, created_at, updated_at FROM teacher_availability")).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetProfile(context.Background(), 404)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfile_Success(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT teacher_id, created_at, updated_at FROM teacher_availability")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"teacher_id", "created_at", "updated_at"}).
			AddRow(int64(10), now, now))

	mock.ExpectQuery(regexp.QuoteMeta("FROM recurring_slots")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "day_of_week", "start_time", "end_time"}).
			AddRow(int64(1), int(time.Monday), "09:00", "12:00").
			AddRow(int64(2), int(time.Wednesday), "14:00", "18:00"))

	mock.ExpectQuery(regexp.QuoteMeta("FROM specific_date_slots")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slot_date", "start_time", "end_time"}).
			AddRow(int64(3), time.Date(2024, time.June, 22, 0, 0, 0, 0, time.UTC), "10:00", "13:00"))

	mock.ExpectQuery(regexp.QuoteMeta("FROM break_periods")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_date", "end_date", "reason", "kind"}).
			AddRow(int64(4),
				time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, time.July, 14, 0, 0, 0, 0, time.UTC),
				"отпуск", string(domain.BreakKindLeave)))

	profile, err := repo.GetProfile(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), profile.TeacherID)
	require.Len(t, profile.Recurring, 2)
	assert.Equal(t, time.Monday, profile.Recurring[0].DayOfWeek)
	require.Len(t, profile.Specific, 1)
	require.Len(t, profile.Breaks, 1)
	assert.Equal(t, domain.BreakKindLeave, profile.Breaks[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProfile_WithDefaultTemplate(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teacher_availability")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	template := domain.DefaultWeeklyTemplate()
	idRows := sqlmock.NewRows([]string{"id"})
	for i := range template {
		idRows.AddRow(int64(i + 1))
	}
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO recurring_slots")).
		WillReturnRows(idRows)

	profile, err := repo.CreateProfile(context.Background(), 10, template)
	require.NoError(t, err)
	assert.Equal(t, int64(10), profile.TeacherID)
	require.Len(t, profile.Recurring, len(template))
	assert.Equal(t, int64(1), profile.Recurring[0].ID)
	assert.Empty(t, profile.Specific)
	assert.Empty(t, profile.Breaks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProfile_LostRaceToConcurrentRequest(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	// Конкурентный первый запрос уже вставил строку профиля
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teacher_availability")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "teacher_availability_pkey"})

	_, err := repo.CreateProfile(context.Background(), 10, domain.DefaultWeeklyTemplate())
	assert.ErrorIs(t, err, ErrProfileExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProfile_EmptyTemplate(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teacher_availability")).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	profile, err := repo.CreateProfile(context.Background(), 11, nil)
	require.NoError(t, err)
	assert.Empty(t, profile.Recurring)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRules_FullReplacement(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	profile := &domain.AvailabilityProfile{
		TeacherID: 10,
		Recurring: []domain.RecurringSlot{
			{DayOfWeek: time.Tuesday, StartTime: "10:00", EndTime: "15:00"},
		},
		Specific: []domain.SpecificDateSlot{
			{Date: time.Date(2024, time.June, 22, 0, 0, 0, 0, time.UTC), StartTime: "09:00", EndTime: "11:00"},
		},
		Breaks: []domain.BreakPeriod{
			{
				StartDate: time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2024, time.August, 7, 0, 0, 0, 0, time.UTC),
				Reason:    "конференция",
				Kind:      domain.BreakKindBreak,
			},
		},
	}

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM recurring_slots")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM specific_date_slots")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM break_periods")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO recurring_slots")).
		WithArgs(int64(10), int(time.Tuesday), "10:00", "15:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO specific_date_slots")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO break_periods")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE teacher_availability")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ReplaceRules(context.Background(), profile)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRules_EmptyListsOnlyClear(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	profile := &domain.AvailabilityProfile{TeacherID: 12}

	for range []int{0, 1, 2} {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM")).
			WithArgs(int64(12)).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE teacher_availability")).
		WithArgs(int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ReplaceRules(context.Background(), profile)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
