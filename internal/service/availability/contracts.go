package availability

import (
	"context"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
	"github.com/ekazarov/TMS-BookingService/internal/integrations/profileservice"
)

// AvailabilityRepository интерфейс репозитория правил доступности
type AvailabilityRepository interface {
	GetProfile(ctx context.Context, teacherID int64) (*domain.AvailabilityProfile, error)
	CreateProfile(ctx context.Context, teacherID int64, template []domain.RecurringSlot) (*domain.AvailabilityProfile, error)
	ReplaceRules(ctx context.Context, profile *domain.AvailabilityProfile) error
}

// ProfileServiceClient интерфейс клиента для ProfileService
type ProfileServiceClient interface {
	GetTeacher(ctx context.Context, teacherID int64) (*profileservice.Teacher, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
