package update_booking_status

import (
	"context"

	"github.com/ekazarov/TMS-BookingService/internal/service/bookings/models"
)

type BookingService interface {
	SetStatus(ctx context.Context, bookingID int64, req *models.SetStatusRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
