package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
	bookingRepo "github.com/ekazarov/TMS-BookingService/internal/infra/storage/booking"
	"github.com/ekazarov/TMS-BookingService/internal/integrations/notifyservice"
	"github.com/ekazarov/TMS-BookingService/internal/service/bookings/models"
	"github.com/ekazarov/TMS-BookingService/pkg/types"
)

const (
	teacherID int64 = 7
	studentID int64 = 3
	otherID   int64 = 99
)

type stubBookingRepo struct {
	booking *domain.Booking
	getErr  error

	updateErr    error
	updatedFrom  domain.BookingStatus
	updatedTo    domain.BookingStatus
	cancelErr    error
	cancelReason string
}

func (s *stubBookingRepo) GetByID(_ context.Context, _ int64) (*domain.Booking, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	copied := *s.booking
	return &copied, nil
}

func (s *stubBookingRepo) GetByTeacherID(_ context.Context, _ int64, _ *domain.BookingStatus) ([]*domain.Booking, error) {
	return []*domain.Booking{s.booking}, nil
}

func (s *stubBookingRepo) GetByStudentID(_ context.Context, _ int64, _ *domain.BookingStatus) ([]*domain.Booking, error) {
	return []*domain.Booking{s.booking}, nil
}

func (s *stubBookingRepo) UpdateStatus(_ context.Context, _ int64, from, to domain.BookingStatus) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedFrom = from
	s.updatedTo = to
	return nil
}

func (s *stubBookingRepo) Cancel(_ context.Context, _ int64, from domain.BookingStatus, reason string) error {
	if s.cancelErr != nil {
		return s.cancelErr
	}
	s.updatedFrom = from
	s.updatedTo = domain.StatusCancelled
	s.cancelReason = reason
	return nil
}

type stubNotifyClient struct {
	events chan notifyservice.StatusChangeEvent
}

func newStubNotifyClient() *stubNotifyClient {
	return &stubNotifyClient{events: make(chan notifyservice.StatusChangeEvent, 1)}
}

func (s *stubNotifyClient) NotifyStatusChange(_ context.Context, event notifyservice.StatusChangeEvent) error {
	s.events <- event
	return nil
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

func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:          1,
		TeacherID:   teacherID,
		StudentID:   studentID,
		Subject:     "algebra",
		BookingDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		StartTime:   types.TimeString("10:00"),
		EndTime:     types.TimeString("11:00"),
		StartUTC:    time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC),
		EndUTC:      time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		Status:      domain.StatusPending,
	}
}

func newService(repo BookingRepository, notify NotifyServiceClient, now time.Time) *Service {
	svc := NewService(repo, notify, noopLogger{})
	svc.timeProvider = &fixedTimeProvider{now: now}
	return svc
}

func waitForEvent(t *testing.T, client *stubNotifyClient) notifyservice.StatusChangeEvent {
	t.Helper()
	select {
	case event := <-client.events:
		return event
	case <-time.After(time.Second):
		t.Fatal("notification was not sent")
		return notifyservice.StatusChangeEvent{}
	}
}

func TestGetByID_PartyAccess(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubBookingRepo{booking: pendingBooking()}
	svc := newService(repo, newStubNotifyClient(), now)

	for _, userID := range []int64{teacherID, studentID} {
		resp, err := svc.GetByID(context.Background(), 1, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.ID)
	}

	_, err := svc.GetByID(context.Background(), 1, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &stubBookingRepo{getErr: bookingRepo.ErrBookingNotFound}
	svc := newService(repo, newStubNotifyClient(), time.Now())

	_, err := svc.GetByID(context.Background(), 1, teacherID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetByID_DerivedCompleted(t *testing.T) {
	booking := pendingBooking()
	booking.Status = domain.StatusConfirmed

	// Текущий момент - после конца занятия
	now := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	svc := newService(&stubBookingRepo{booking: booking}, newStubNotifyClient(), now)

	resp, err := svc.GetByID(context.Background(), 1, teacherID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
}

func TestSetStatus_TeacherConfirms(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubBookingRepo{booking: pendingBooking()}
	notify := newStubNotifyClient()
	svc := newService(repo, notify, now)

	err := svc.SetStatus(context.Background(), 1, &models.SetStatusRequest{
		ActorID: teacherID,
		Status:  string(domain.StatusConfirmed),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, repo.updatedFrom)
	assert.Equal(t, domain.StatusConfirmed, repo.updatedTo)

	event := waitForEvent(t, notify)
	assert.Equal(t, int64(1), event.BookingID)
	assert.Equal(t, string(domain.StatusConfirmed), event.Status)
}

func TestSetStatus_StudentCannotConfirm(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubBookingRepo{booking: pendingBooking()}
	svc := newService(repo, newStubNotifyClient(), now)

	err := svc.SetStatus(context.Background(), 1, &models.SetStatusRequest{
		ActorID: studentID,
		Status:  string(domain.StatusConfirmed),
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSetStatus_InvalidTransition(t *testing.T) {
	booking := pendingBooking()
	booking.Status = domain.StatusRejected

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newService(&stubBookingRepo{booking: booking}, newStubNotifyClient(), now)

	err := svc.SetStatus(context.Background(), 1, &models.SetStatusRequest{
		ActorID: teacherID,
		Status:  string(domain.StatusConfirmed),
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSetStatus_CompletedIsDerivedNotSet(t *testing.T) {
	booking := pendingBooking()
	booking.Status = domain.StatusConfirmed

	// Завершение выводится при чтении, руками его не ставят -
	// запрос completed отклоняется и до, и после конца занятия
	for _, now := range []time.Time{
		time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC),
	} {
		svc := newService(&stubBookingRepo{booking: booking}, newStubNotifyClient(), now)

		err := svc.SetStatus(context.Background(), 1, &models.SetStatusRequest{
			ActorID: teacherID,
			Status:  string(domain.StatusCompleted),
		})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
}

func TestSetStatus_ConcurrentConflict(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubBookingRepo{booking: pendingBooking(), updateErr: bookingRepo.ErrStatusConflict}
	svc := newService(repo, newStubNotifyClient(), now)

	err := svc.SetStatus(context.Background(), 1, &models.SetStatusRequest{
		ActorID: teacherID,
		Status:  string(domain.StatusConfirmed),
	})
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestCancel_EitherPartyWithReason(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, actorID := range []int64{teacherID, studentID} {
		repo := &stubBookingRepo{booking: pendingBooking()}
		notify := newStubNotifyClient()
		svc := newService(repo, notify, now)

		err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
			ActorID:            actorID,
			CancellationReason: "schedule conflict",
		})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusCancelled, repo.updatedTo)
		assert.Equal(t, "schedule conflict", repo.cancelReason)

		event := waitForEvent(t, notify)
		assert.Equal(t, string(domain.StatusCancelled), event.Status)
	}
}

func TestCancel_NonPartyDenied(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newService(&stubBookingRepo{booking: pendingBooking()}, newStubNotifyClient(), now)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{ActorID: otherID})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCancel_CompletedLessonCannotBeCancelled(t *testing.T) {
	booking := pendingBooking()
	booking.Status = domain.StatusConfirmed

	// Занятие уже закончилось - эффективный статус completed
	now := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	svc := newService(&stubBookingRepo{booking: booking}, newStubNotifyClient(), now)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{ActorID: studentID})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestGetTeacherBookings_OwnerOnly(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newService(&stubBookingRepo{booking: pendingBooking()}, newStubNotifyClient(), now)

	resp, err := svc.GetTeacherBookings(context.Background(), &models.GetTeacherBookingsRequest{
		TeacherID: teacherID,
		ActorID:   teacherID,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)

	_, err = svc.GetTeacherBookings(context.Background(), &models.GetTeacherBookingsRequest{
		TeacherID: teacherID,
		ActorID:   studentID,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetStudentBookings_InvalidStatusFilter(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newService(&stubBookingRepo{booking: pendingBooking()}, newStubNotifyClient(), now)

	bad := "unknown"
	_, err := svc.GetStudentBookings(context.Background(), &models.GetStudentBookingsRequest{
		StudentID: studentID,
		ActorID:   studentID,
		Status:    &bad,
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
