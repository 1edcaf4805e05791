package get_available_slots

import (
	"fmt"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, maxDays int) error {
	if req.TeacherID <= 0 {
		return fmt.Errorf("%w: teacherID must be positive", ErrInvalidInput)
	}

	if req.Days < 0 {
		return fmt.Errorf("%w: days must not be negative", ErrInvalidHorizon)
	}

	if req.Days > maxDays {
		return fmt.Errorf("%w: at most %d days can be requested", ErrInvalidHorizon, maxDays)
	}

	return nil
}
