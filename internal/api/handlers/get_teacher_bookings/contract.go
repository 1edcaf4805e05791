package get_teacher_bookings

import (
	"context"

	"github.com/ekazarov/TMS-BookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetTeacherBookings(ctx context.Context, req *models.GetTeacherBookingsRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
