package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekazarov/TMS-BookingService/internal/availability"
	"github.com/ekazarov/TMS-BookingService/internal/domain"
	availabilityRepo "github.com/ekazarov/TMS-BookingService/internal/infra/storage/availability"
	"github.com/ekazarov/TMS-BookingService/internal/integrations/profileservice"
	"github.com/ekazarov/TMS-BookingService/pkg/types"
)

type stubProfileClient struct {
	teacher *profileservice.Teacher
	err     error
}

func (s *stubProfileClient) GetTeacher(_ context.Context, _ int64) (*profileservice.Teacher, error) {
	return s.teacher, s.err
}

type stubAvailabilityRepo struct {
	profile *domain.AvailabilityProfile
	err     error
}

func (s *stubAvailabilityRepo) GetProfile(_ context.Context, _ int64) (*domain.AvailabilityProfile, error) {
	return s.profile, s.err
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func mustTime(t *testing.T, s string) types.TimeString {
	t.Helper()
	ts, err := types.NewTimeStringFromString(s)
	require.NoError(t, err)
	return ts
}

func newUseCase(repo AvailabilityRepository, client ProfileServiceClient, now time.Time) *UseCase {
	uc := NewUseCase(repo, client, availability.NewResolver(), domain.DefaultHorizonDays, domain.MaxHorizonDays, noopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: now}
	return uc
}

func TestExecute_ResolvesProfileRules(t *testing.T) {
	// 2024-06-10 - понедельник
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	profile := &domain.AvailabilityProfile{
		TeacherID: 7,
		Recurring: []domain.RecurringSlot{
			{DayOfWeek: time.Monday, StartTime: mustTime(t, "10:00"), EndTime: mustTime(t, "12:00")},
		},
	}

	uc := newUseCase(
		&stubAvailabilityRepo{profile: profile},
		&stubProfileClient{teacher: &profileservice.Teacher{ID: 7, Timezone: "UTC"}},
		now,
	)

	resp, err := uc.Execute(context.Background(), &Request{TeacherID: 7, Days: 7})
	require.NoError(t, err)

	assert.Equal(t, int64(7), resp.TeacherID)
	assert.Equal(t, "UTC", resp.Timezone)
	assert.Equal(t, 7, resp.Days)
	assert.Len(t, resp.Schedule, 7)

	// Понедельник - единственный день со слотами
	require.Len(t, resp.Schedule[0].Slots, 1)
	assert.Equal(t, mustTime(t, "10:00"), resp.Schedule[0].Slots[0].StartTime)
	for _, day := range resp.Schedule[1:] {
		assert.Empty(t, day.Slots)
	}
}

func TestExecute_DefaultTemplateWhenProfileMissing(t *testing.T) {
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	uc := newUseCase(
		&stubAvailabilityRepo{err: availabilityRepo.ErrProfileNotFound},
		&stubProfileClient{teacher: &profileservice.Teacher{ID: 7, Timezone: "UTC"}},
		now,
	)

	resp, err := uc.Execute(context.Background(), &Request{TeacherID: 7, Days: 7})
	require.NoError(t, err)

	// Пн-Пт по шаблону, Сб-Вс пусто
	for i := 0; i < 5; i++ {
		require.Len(t, resp.Schedule[i].Slots, 1, "day %d", i)
		assert.Equal(t, domain.DefaultDayStart, resp.Schedule[i].Slots[0].StartTime)
		assert.Equal(t, domain.DefaultDayEnd, resp.Schedule[i].Slots[0].EndTime)
	}
	assert.Empty(t, resp.Schedule[5].Slots)
	assert.Empty(t, resp.Schedule[6].Slots)
}

func TestExecute_DefaultsFromAndDays(t *testing.T) {
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	uc := newUseCase(
		&stubAvailabilityRepo{err: availabilityRepo.ErrProfileNotFound},
		&stubProfileClient{teacher: &profileservice.Teacher{ID: 7, Timezone: "UTC"}},
		now,
	)

	resp, err := uc.Execute(context.Background(), &Request{TeacherID: 7})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultHorizonDays, resp.Days)
	assert.True(t, resp.From.Equal(domain.DateOnly(now)))
	assert.Len(t, resp.Schedule, domain.DefaultHorizonDays)
}

func TestExecute_PastFromClampedToToday(t *testing.T) {
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	uc := newUseCase(
		&stubAvailabilityRepo{err: availabilityRepo.ErrProfileNotFound},
		&stubProfileClient{teacher: &profileservice.Teacher{ID: 7, Timezone: "UTC"}},
		now,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		TeacherID: 7,
		From:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Days:      3,
	})
	require.NoError(t, err)

	assert.True(t, resp.From.Equal(domain.DateOnly(now)))
}

func TestExecute_TeacherNotFound(t *testing.T) {
	uc := newUseCase(
		&stubAvailabilityRepo{},
		&stubProfileClient{err: profileservice.ErrTeacherNotFound},
		time.Now(),
	)

	_, err := uc.Execute(context.Background(), &Request{TeacherID: 42, Days: 7})
	assert.ErrorIs(t, err, ErrTeacherNotFound)
}

func TestExecute_HorizonTooLarge(t *testing.T) {
	uc := newUseCase(&stubAvailabilityRepo{}, &stubProfileClient{}, time.Now())

	_, err := uc.Execute(context.Background(), &Request{TeacherID: 7, Days: domain.MaxHorizonDays + 1})
	assert.ErrorIs(t, err, ErrInvalidHorizon)
}

func TestExecute_UnknownTimezone(t *testing.T) {
	uc := newUseCase(
		&stubAvailabilityRepo{},
		&stubProfileClient{teacher: &profileservice.Teacher{ID: 7, Timezone: "Mars/Olympus"}},
		time.Now(),
	)

	_, err := uc.Execute(context.Background(), &Request{TeacherID: 7, Days: 7})
	assert.ErrorIs(t, err, ErrUnknownTimezone)
}
