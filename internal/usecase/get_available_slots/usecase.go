package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
	availabilityRepo "github.com/ekazarov/TMS-BookingService/internal/infra/storage/availability"
	profileClient "github.com/ekazarov/TMS-BookingService/internal/integrations/profileservice"
)

// UseCase use case для получения доступных слотов преподавателя
type UseCase struct {
	availabilityRepo AvailabilityRepository
	profileClient    ProfileServiceClient
	resolver         SlotResolver
	timeProvider     TimeProvider
	logger           Logger

	defaultDays int
	maxDays     int
}

// NewUseCase создает новый экземпляр use case.
// defaultDays подставляется, когда окно не указано; maxDays ограничивает запрос.
func NewUseCase(
	availabilityRepo AvailabilityRepository,
	profileClient ProfileServiceClient,
	resolver SlotResolver,
	defaultDays int,
	maxDays int,
	logger Logger,
) *UseCase {
	return &UseCase{
		availabilityRepo: availabilityRepo,
		profileClient:    profileClient,
		resolver:         resolver,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
		defaultDays:      defaultDays,
		maxDays:          maxDays,
	}
}

// Execute выполняет use case получения доступных слотов.
// Окно всегда начинается не раньше текущей даты в зоне преподавателя;
// дни без слотов включаются в ответ пустыми.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: user=%d, teacher=%d, from=%s, days=%d",
		req.UserID, req.TeacherID, req.From.Format(domain.DateFormat), req.Days)

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.maxDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем преподавателя (в том числе его часовой пояс)
	teacher, err := uc.profileClient.GetTeacher(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, profileClient.ErrTeacherNotFound) {
			uc.logger.Warn("GetAvailableSlots: teacher id=%d not found", req.TeacherID)
			return nil, ErrTeacherNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get teacher id=%d: %v", req.TeacherID, err)
		return nil, fmt.Errorf("%w: failed to get teacher: %v", ErrInternal, err)
	}

	// 3. Текущая дата в зоне преподавателя - от нее отсчитывается "прошлое"
	loc, err := time.LoadLocation(teacher.Timezone)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: unknown timezone %q for teacher id=%d: %v",
			teacher.Timezone, req.TeacherID, err)
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, teacher.Timezone)
	}
	today := domain.DateOnly(uc.timeProvider.Now().In(loc))

	// 4. Получаем профиль доступности; если правил еще нет - преподаватель
	// виден с шаблоном по умолчанию, профиль при этом не создается
	profile, err := uc.availabilityRepo.GetProfile(ctx, req.TeacherID)
	if err != nil {
		if !errors.Is(err, availabilityRepo.ErrProfileNotFound) {
			uc.logger.Error("GetAvailableSlots: failed to get availability profile for teacher id=%d: %v",
				req.TeacherID, err)
			return nil, fmt.Errorf("%w: failed to get availability profile: %v", ErrInternal, err)
		}
		profile = &domain.AvailabilityProfile{
			TeacherID: req.TeacherID,
			Recurring: domain.DefaultWeeklyTemplate(),
		}
		uc.logger.Info("GetAvailableSlots: using default weekly template for teacher id=%d", req.TeacherID)
	}

	// 5. Нормализуем окно
	from := req.From
	if from.IsZero() {
		from = today
	}
	days := req.Days
	if days == 0 {
		days = uc.defaultDays
	}

	// 6. Разворачиваем правила в слоты
	schedule := uc.resolver.Resolve(profile, from, days, today)

	total := 0
	for i := range schedule {
		total += len(schedule[i].Slots)
	}
	uc.logger.Info("GetAvailableSlots: resolved %d slots over %d days for teacher id=%d",
		total, days, req.TeacherID)

	return &Response{
		TeacherID: req.TeacherID,
		Timezone:  teacher.Timezone,
		From:      schedule[0].Date,
		Days:      days,
		Schedule:  schedule,
	}, nil
}
