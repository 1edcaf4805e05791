package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
	availabilityRepo "github.com/ekazarov/TMS-BookingService/internal/infra/storage/availability"
	profileClient "github.com/ekazarov/TMS-BookingService/internal/integrations/profileservice"
	"github.com/ekazarov/TMS-BookingService/internal/service/availability/models"
)

// Service сервис редактирования правил доступности преподавателя
type Service struct {
	availabilityRepo AvailabilityRepository
	profileClient    ProfileServiceClient
	txManager        TransactionManager
	logger           Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(
	availabilityRepo AvailabilityRepository,
	profileClient ProfileServiceClient,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		availabilityRepo: availabilityRepo,
		profileClient:    profileClient,
		txManager:        txManager,
		logger:           logger,
	}
}

// GetProfile возвращает правила доступности преподавателя.
// Если профиля ещё нет, он создается с недельным шаблоном по умолчанию
// (Пн-Пт, рабочие часы) - преподаватель бронируем сразу после регистрации.
func (s *Service) GetProfile(ctx context.Context, teacherID int64) (*models.AvailabilityResponse, error) {
	s.logger.Info("GetProfile: fetching availability for teacher=%d", teacherID)

	if err := s.checkTeacherExists(ctx, teacherID, "GetProfile"); err != nil {
		return nil, err
	}

	profile, err := s.availabilityRepo.GetProfile(ctx, teacherID)
	if err == nil {
		return models.FromDomainProfile(profile), nil
	}
	if !errors.Is(err, availabilityRepo.ErrProfileNotFound) {
		s.logger.Error("GetProfile: repository error for teacher=%d: %v", teacherID, err)
		return nil, fmt.Errorf("%w: GetProfile - repository error: %v", ErrInternal, err)
	}

	// Ленивое создание: профиль и шаблон пишутся атомарно
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		created, err := s.availabilityRepo.CreateProfile(txCtx, teacherID, domain.DefaultWeeklyTemplate())
		if err != nil {
			if errors.Is(err, availabilityRepo.ErrProfileExists) {
				return err
			}
			return fmt.Errorf("%w: GetProfile - create default profile: %v", ErrInternal, err)
		}
		profile = created
		return nil
	})
	if errors.Is(err, availabilityRepo.ErrProfileExists) {
		// Гонка двух первых запросов: профиль успел создать конкурент, читаем его
		s.logger.Info("GetProfile: profile for teacher=%d created concurrently, reloading", teacherID)
		profile, err = s.availabilityRepo.GetProfile(ctx, teacherID)
		if err != nil {
			s.logger.Error("GetProfile: failed to reload profile for teacher=%d: %v", teacherID, err)
			return nil, fmt.Errorf("%w: GetProfile - reload profile: %v", ErrInternal, err)
		}
		return models.FromDomainProfile(profile), nil
	}
	if err != nil {
		s.logger.Error("GetProfile: failed to create default profile for teacher=%d: %v", teacherID, err)
		return nil, err
	}

	s.logger.Info("GetProfile: created default availability profile for teacher=%d", teacherID)
	return models.FromDomainProfile(profile), nil
}

// ReplaceRules полностью заменяет правила доступности преподавателя.
// Менять расписание может только сам преподаватель. Уже созданные
// бронирования при смене правил не трогаются.
func (s *Service) ReplaceRules(ctx context.Context, req *models.UpdateAvailabilityRequest) (*models.AvailabilityResponse, error) {
	s.logger.Info("ReplaceRules: updating availability for teacher=%d by user=%d, rules=%d/%d/%d",
		req.TeacherID, req.ActorID, len(req.Recurring), len(req.Specific), len(req.Breaks))

	if req.ActorID != req.TeacherID {
		s.logger.Warn("ReplaceRules: access denied for user=%d to teacher=%d schedule",
			req.ActorID, req.TeacherID)
		return nil, ErrAccessDenied
	}

	if err := s.checkTeacherExists(ctx, req.TeacherID, "ReplaceRules"); err != nil {
		return nil, err
	}

	profile, err := req.ToDomainProfile()
	if err != nil {
		s.logger.Warn("ReplaceRules: invalid rules for teacher=%d: %v", req.TeacherID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	replaceTx := func(txCtx context.Context) error {
		if _, err := s.availabilityRepo.GetProfile(txCtx, req.TeacherID); err != nil {
			if !errors.Is(err, availabilityRepo.ErrProfileNotFound) {
				return fmt.Errorf("%w: ReplaceRules - repository error: %v", ErrInternal, err)
			}
			if _, err := s.availabilityRepo.CreateProfile(txCtx, req.TeacherID, nil); err != nil {
				if errors.Is(err, availabilityRepo.ErrProfileExists) {
					return err
				}
				return fmt.Errorf("%w: ReplaceRules - create profile: %v", ErrInternal, err)
			}
		}
		if err := s.availabilityRepo.ReplaceRules(txCtx, profile); err != nil {
			return fmt.Errorf("%w: ReplaceRules - replace rules: %v", ErrInternal, err)
		}
		return nil
	}

	err = s.txManager.Do(ctx, replaceTx)
	if errors.Is(err, availabilityRepo.ErrProfileExists) {
		// Профиль создан конкурентным запросом между чтением и вставкой;
		// повторная транзакция увидит его и перейдет сразу к замене правил
		err = s.txManager.Do(ctx, replaceTx)
	}
	if err != nil {
		s.logger.Error("ReplaceRules: failed to replace rules for teacher=%d: %v", req.TeacherID, err)
		return nil, err
	}

	// Перечитываем профиль, чтобы отдать правила с выданными БД идентификаторами
	updated, err := s.availabilityRepo.GetProfile(ctx, req.TeacherID)
	if err != nil {
		s.logger.Error("ReplaceRules: failed to reload profile for teacher=%d: %v", req.TeacherID, err)
		return nil, fmt.Errorf("%w: ReplaceRules - reload profile: %v", ErrInternal, err)
	}

	s.logger.Info("ReplaceRules: successfully updated availability for teacher=%d", req.TeacherID)
	return models.FromDomainProfile(updated), nil
}

func (s *Service) checkTeacherExists(ctx context.Context, teacherID int64, op string) error {
	if _, err := s.profileClient.GetTeacher(ctx, teacherID); err != nil {
		if errors.Is(err, profileClient.ErrTeacherNotFound) {
			s.logger.Warn("%s: teacher id=%d not found", op, teacherID)
			return ErrTeacherNotFound
		}
		s.logger.Error("%s: failed to get teacher id=%d: %v", op, teacherID, err)
		return fmt.Errorf("%w: %s - failed to get teacher: %v", ErrInternal, op, err)
	}
	return nil
}
