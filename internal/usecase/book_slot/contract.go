package book_slot

import (
	"context"
	"time"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
	"github.com/ekazarov/TMS-BookingService/internal/integrations/profileservice"
	"github.com/ekazarov/TMS-BookingService/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// TryCreate атомарно создает бронирование; занятый слот - ErrSlotTaken
	TryCreate(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// AvailabilityRepository интерфейс репозитория правил доступности
type AvailabilityRepository interface {
	GetProfile(ctx context.Context, teacherID int64) (*domain.AvailabilityProfile, error)
}

// ProfileServiceClient интерфейс клиента для ProfileService
type ProfileServiceClient interface {
	GetTeacher(ctx context.Context, teacherID int64) (*profileservice.Teacher, error)
	GetStudent(ctx context.Context, studentID int64) (*profileservice.Student, error)
}

// SlotResolver интерфейс разворачивания правил доступности в слоты одной даты
type SlotResolver interface {
	ResolveDate(profile *domain.AvailabilityProfile, date time.Time, today time.Time) []domain.Slot
}

// TimeConverter интерфейс конвертации локального времени преподавателя в UTC
type TimeConverter interface {
	ToUTC(date time.Time, wallClock types.TimeString, zoneID string) (time.Time, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
