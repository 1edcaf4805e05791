package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
	bookingRepo "github.com/ekazarov/TMS-BookingService/internal/infra/storage/booking"
	"github.com/ekazarov/TMS-BookingService/internal/integrations/notifyservice"
	"github.com/ekazarov/TMS-BookingService/internal/service/bookings/models"
)

// notifyTimeout ограничивает время фонового вызова NotifyService
const notifyTimeout = 5 * time.Second

// Service сервис жизненного цикла бронирований.
// Создание бронирования живет в usecase book_slot; здесь - чтение
// и переходы статусов после создания.
type Service struct {
	bookingRepo  BookingRepository
	notifyClient NotifyServiceClient
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	notifyClient NotifyServiceClient,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		notifyClient: notifyClient,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование по ID.
// Доступно только участникам бронирования - преподавателю или студенту.
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, id, "GetByID")
	if err != nil {
		return nil, err
	}

	if !booking.IsParty(userID) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking, s.timeProvider.Now()), nil
}

// GetTeacherBookings получает бронирования преподавателя, сначала самые свежие.
// Опционально фильтрует по статусу. Доступно только самому преподавателю.
func (s *Service) GetTeacherBookings(ctx context.Context, req *models.GetTeacherBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetTeacherBookings: fetching bookings for teacher=%d, actor=%d, status=%v",
		req.TeacherID, req.ActorID, req.Status)

	if req.ActorID != req.TeacherID {
		s.logger.Warn("GetTeacherBookings: access denied for user=%d to teacher=%d bookings",
			req.ActorID, req.TeacherID)
		return nil, ErrAccessDenied
	}

	status, err := s.parseStatusFilter(req.Status)
	if err != nil {
		s.logger.Warn("GetTeacherBookings: invalid status=%s for teacher=%d", *req.Status, req.TeacherID)
		return nil, err
	}

	bookings, err := s.bookingRepo.GetByTeacherID(ctx, req.TeacherID, status)
	if err != nil {
		s.logger.Error("GetTeacherBookings: repository error for teacher=%d: %v", req.TeacherID, err)
		return nil, fmt.Errorf("%w: GetTeacherBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetTeacherBookings: fetched %d bookings for teacher=%d", len(bookings), req.TeacherID)
	return models.FromDomainBookingList(bookings, s.timeProvider.Now()), nil
}

// GetStudentBookings получает бронирования студента, сначала самые свежие.
// Опционально фильтрует по статусу. Доступно только самому студенту.
func (s *Service) GetStudentBookings(ctx context.Context, req *models.GetStudentBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetStudentBookings: fetching bookings for student=%d, actor=%d, status=%v",
		req.StudentID, req.ActorID, req.Status)

	if req.ActorID != req.StudentID {
		s.logger.Warn("GetStudentBookings: access denied for user=%d to student=%d bookings",
			req.ActorID, req.StudentID)
		return nil, ErrAccessDenied
	}

	status, err := s.parseStatusFilter(req.Status)
	if err != nil {
		s.logger.Warn("GetStudentBookings: invalid status=%s for student=%d", *req.Status, req.StudentID)
		return nil, err
	}

	bookings, err := s.bookingRepo.GetByStudentID(ctx, req.StudentID, status)
	if err != nil {
		s.logger.Error("GetStudentBookings: repository error for student=%d: %v", req.StudentID, err)
		return nil, fmt.Errorf("%w: GetStudentBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetStudentBookings: fetched %d bookings for student=%d", len(bookings), req.StudentID)
	return models.FromDomainBookingList(bookings, s.timeProvider.Now()), nil
}

// SetStatus переводит бронирование в новый статус.
// Подтверждать и отклонять может только преподаватель; отмена идет через Cancel.
// Переход проверяется по эффективному статусу: подтвержденное занятие,
// которое уже закончилось, считается завершенным и менять его нельзя.
func (s *Service) SetStatus(ctx context.Context, bookingID int64, req *models.SetStatusRequest) error {
	s.logger.Info("SetStatus: updating booking id=%d to status=%s by user=%d",
		bookingID, req.Status, req.ActorID)

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("SetStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	if newStatus == domain.StatusCancelled {
		// Отмена отдельной операцией - с причиной
		return s.Cancel(ctx, bookingID, &models.CancelBookingRequest{ActorID: req.ActorID})
	}

	if newStatus == domain.StatusCompleted {
		// Завершение выводится при чтении по окончанию занятия, запросом оно не ставится
		s.logger.Warn("SetStatus: completed is derived on read, rejected for booking id=%d", bookingID)
		return fmt.Errorf("%w: completed is derived, not set", ErrInvalidTransition)
	}

	booking, err := s.getBooking(ctx, bookingID, "SetStatus")
	if err != nil {
		return err
	}

	if !booking.IsParty(req.ActorID) {
		s.logger.Warn("SetStatus: access denied for user=%d to booking id=%d", req.ActorID, bookingID)
		return ErrAccessDenied
	}

	if domain.TeacherOnlyStatus(newStatus) && req.ActorID != booking.TeacherID {
		s.logger.Warn("SetStatus: status=%s may be set only by teacher, user=%d is not teacher of booking id=%d",
			newStatus, req.ActorID, bookingID)
		return ErrAccessDenied
	}

	if err := s.checkTransition(booking, newStatus); err != nil {
		s.logger.Warn("SetStatus: transition %s -> %s rejected for booking id=%d",
			booking.Status, newStatus, bookingID)
		return err
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, booking.Status, newStatus); err != nil {
		return s.mapRepoError(err, bookingID, "SetStatus")
	}

	s.logger.Info("SetStatus: successfully updated booking id=%d to status=%s", bookingID, newStatus)
	s.notifyAsync(booking, newStatus)
	return nil
}

// Cancel отменяет бронирование с указанием причины.
// Отменить может любой из участников, пока бронирование активно.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.ActorID)

	booking, err := s.getBooking(ctx, bookingID, "Cancel")
	if err != nil {
		return err
	}

	if !booking.IsParty(req.ActorID) {
		s.logger.Warn("Cancel: access denied for user=%d to booking id=%d", req.ActorID, bookingID)
		return ErrAccessDenied
	}

	if err := s.checkTransition(booking, domain.StatusCancelled); err != nil {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return ErrCannotCancel
	}

	if err := s.bookingRepo.Cancel(ctx, bookingID, booking.Status, req.CancellationReason); err != nil {
		return s.mapRepoError(err, bookingID, "Cancel")
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	s.notifyAsync(booking, domain.StatusCancelled)
	return nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, id int64, op string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// checkTransition проверяет переход по эффективному статусу на текущий момент
func (s *Service) checkTransition(booking *domain.Booking, newStatus domain.BookingStatus) error {
	effective := *booking
	effective.Status = booking.EffectiveStatus(s.timeProvider.Now())
	if !effective.CanTransitionTo(newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, effective.Status, newStatus)
	}
	return nil
}

func (s *Service) mapRepoError(err error, bookingID int64, op string) error {
	switch {
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		s.logger.Warn("%s: booking id=%d not found during update", op, bookingID)
		return ErrBookingNotFound
	case errors.Is(err, bookingRepo.ErrStatusConflict):
		s.logger.Warn("%s: booking id=%d status changed concurrently", op, bookingID)
		return ErrStatusConflict
	default:
		s.logger.Error("%s: repository error for booking id=%d: %v", op, bookingID, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}

// notifyAsync уведомляет участников о смене статуса в фоне.
// Ошибки уведомления логируются и никогда не влияют на результат операции.
func (s *Service) notifyAsync(booking *domain.Booking, newStatus domain.BookingStatus) {
	event := notifyservice.StatusChangeEvent{
		BookingID: booking.ID,
		Status:    string(newStatus),
		TeacherID: booking.TeacherID,
		StudentID: booking.StudentID,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifyClient.NotifyStatusChange(ctx, event); err != nil {
			s.logger.Warn("notifyAsync: failed to notify status change for booking id=%d: %v",
				booking.ID, err)
		}
	}()
}

func (s *Service) parseStatusFilter(status *string) (*domain.BookingStatus, error) {
	if status == nil {
		return nil, nil
	}
	parsed, err := models.ToDomainBookingStatus(*status)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *status)
	}
	return &parsed, nil
}
