package update_availability

import (
	"context"

	"github.com/ekazarov/TMS-BookingService/internal/service/availability/models"
)

type AvailabilityService interface {
	ReplaceRules(ctx context.Context, req *models.UpdateAvailabilityRequest) (*models.AvailabilityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
