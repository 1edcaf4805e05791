package book_slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
	availabilityRepo "github.com/ekazarov/TMS-BookingService/internal/infra/storage/availability"
	bookingRepo "github.com/ekazarov/TMS-BookingService/internal/infra/storage/booking"
	profileClient "github.com/ekazarov/TMS-BookingService/internal/integrations/profileservice"
	"github.com/ekazarov/TMS-BookingService/internal/timezone"
)

// UseCase use case для бронирования слота студентом
type UseCase struct {
	bookingRepo      BookingRepository
	availabilityRepo AvailabilityRepository
	profileClient    ProfileServiceClient
	resolver         SlotResolver
	converter        TimeConverter
	txManager        TransactionManager
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	availabilityRepo AvailabilityRepository,
	profileClient ProfileServiceClient,
	resolver SlotResolver,
	converter TimeConverter,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		availabilityRepo: availabilityRepo,
		profileClient:    profileClient,
		resolver:         resolver,
		converter:        converter,
		txManager:        txManager,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case бронирования слота.
// Доступность пересчитывается в момент бронирования: слот, показанный студенту
// ранее, мог исчезнуть после изменения правил преподавателем. Занятость слота
// проверяет БД при вставке - два конкурентных бронирования одного слота
// разрешаются в пользу ровно одного.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookSlot: student=%d, teacher=%d, date=%s, time=%s-%s",
		req.StudentID, req.TeacherID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookSlot: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем преподавателя (в том числе его часовой пояс)
	teacher, err := uc.profileClient.GetTeacher(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, profileClient.ErrTeacherNotFound) {
			uc.logger.Warn("BookSlot: teacher id=%d not found", req.TeacherID)
			return nil, ErrTeacherNotFound
		}
		uc.logger.Error("BookSlot: failed to get teacher id=%d: %v", req.TeacherID, err)
		return nil, fmt.Errorf("%w: failed to get teacher: %v", ErrInternal, err)
	}

	// 4. Проверяем существование студента
	if _, err := uc.profileClient.GetStudent(ctx, req.StudentID); err != nil {
		if errors.Is(err, profileClient.ErrStudentNotFound) {
			uc.logger.Warn("BookSlot: student id=%d not found", req.StudentID)
			return nil, ErrStudentNotFound
		}
		uc.logger.Error("BookSlot: failed to get student id=%d: %v", req.StudentID, err)
		return nil, fmt.Errorf("%w: failed to get student: %v", ErrInternal, err)
	}

	// 5. Дата не должна быть в прошлом относительно зоны преподавателя
	loc, err := time.LoadLocation(teacher.Timezone)
	if err != nil {
		uc.logger.Error("BookSlot: unknown timezone %q for teacher id=%d: %v",
			teacher.Timezone, req.TeacherID, err)
		return nil, fmt.Errorf("%w: %q", timezone.ErrUnknownZone, teacher.Timezone)
	}
	today := domain.DateOnly(now.In(loc))
	if domain.DateOnly(req.Date).Before(today) {
		uc.logger.Warn("BookSlot: date %s is in the past", req.Date.Format(domain.DateFormat))
		return nil, ErrDateInPast
	}

	// 6. Конвертируем границы слота в UTC. Ошибки перевода часов (несуществующее
	// или неоднозначное локальное время) возвращаются вызывающему как есть
	startUTC, err := uc.converter.ToUTC(req.Date, req.StartTime, teacher.Timezone)
	if err != nil {
		uc.logger.Warn("BookSlot: failed to convert start time to UTC: %v", err)
		return nil, err
	}
	endUTC, err := uc.converter.ToUTC(req.Date, req.EndTime, teacher.Timezone)
	if err != nil {
		uc.logger.Warn("BookSlot: failed to convert end time to UTC: %v", err)
		return nil, err
	}

	// 7. Пересчитываем доступность на запрошенную дату
	profile, err := uc.availabilityRepo.GetProfile(ctx, req.TeacherID)
	if err != nil {
		if !errors.Is(err, availabilityRepo.ErrProfileNotFound) {
			uc.logger.Error("BookSlot: failed to get availability profile for teacher id=%d: %v",
				req.TeacherID, err)
			return nil, fmt.Errorf("%w: failed to get availability profile: %v", ErrInternal, err)
		}
		profile = &domain.AvailabilityProfile{
			TeacherID: req.TeacherID,
			Recurring: domain.DefaultWeeklyTemplate(),
		}
	}

	slot, err := findRequestedSlot(uc.resolver.ResolveDate(profile, req.Date, today), req)
	if err != nil {
		uc.logger.Warn("BookSlot: slot %s-%s on %s not in teacher id=%d availability",
			req.StartTime, req.EndTime, req.Date.Format(domain.DateFormat), req.TeacherID)
		return nil, err
	}

	// 8. Создаем бронирование в сериализуемой транзакции
	booking := &domain.Booking{
		TeacherID:   req.TeacherID,
		StudentID:   req.StudentID,
		Subject:     req.Subject,
		ModuleID:    req.ModuleID,
		BookingDate: domain.DateOnly(req.Date),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		StartUTC:    startUTC,
		EndUTC:      endUTC,
		Notes:       req.Notes,
	}

	var result *domain.Booking
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		created, err := uc.bookingRepo.TryCreate(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotTaken) {
				return ErrSlotTaken
			}
			// Не схлопываем ошибку хранилища: конфликт сериализации должен
			// остаться различимым для повтора транзакции
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}
		result = created
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			uc.logger.Warn("BookSlot: slot %s-%s on %s for teacher id=%d already taken",
				req.StartTime, req.EndTime, req.Date.Format(domain.DateFormat), req.TeacherID)
			return nil, ErrSlotTaken
		}
		uc.logger.Error("BookSlot: transaction failed: %v", err)
		return nil, err
	}

	uc.logger.Info("BookSlot: successfully created booking id=%d for slot %s", result.ID, slot.ID)

	return &Response{
		ID:        result.ID,
		SlotID:    slot.ID,
		TeacherID: result.TeacherID,
		StudentID: result.StudentID,
		Subject:   result.Subject,
		ModuleID:  result.ModuleID,
		Date:      result.BookingDate,
		StartTime: result.StartTime,
		EndTime:   result.EndTime,
		StartUTC:  result.StartUTC,
		EndUTC:    result.EndUTC,
		Status:    string(result.Status),
		Notes:     result.Notes,
		CreatedAt: result.CreatedAt,
	}, nil
}

// findRequestedSlot ищет запрошенный интервал среди актуальных слотов даты
func findRequestedSlot(slots []domain.Slot, req *Request) (*domain.Slot, error) {
	for i := range slots {
		if slots[i].StartTime == req.StartTime && slots[i].EndTime == req.EndTime {
			return &slots[i], nil
		}
	}
	return nil, ErrSlotNoLongerAvailable
}
