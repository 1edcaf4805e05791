package get_available_slots

import (
	"context"
	"time"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
	"github.com/ekazarov/TMS-BookingService/internal/integrations/profileservice"
)

// AvailabilityRepository интерфейс репозитория правил доступности
type AvailabilityRepository interface {
	// GetProfile получает профиль доступности преподавателя со всеми правилами
	GetProfile(ctx context.Context, teacherID int64) (*domain.AvailabilityProfile, error)
}

// ProfileServiceClient интерфейс клиента для ProfileService
type ProfileServiceClient interface {
	GetTeacher(ctx context.Context, teacherID int64) (*profileservice.Teacher, error)
}

// SlotResolver интерфейс разворачивания правил доступности в конкретные слоты
type SlotResolver interface {
	Resolve(profile *domain.AvailabilityProfile, from time.Time, horizonDays int, today time.Time) []domain.DaySlots
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
