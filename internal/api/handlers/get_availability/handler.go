package get_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ekazarov/TMS-BookingService/internal/api/handlers"
	availabilityService "github.com/ekazarov/TMS-BookingService/internal/service/availability"
)

const (
	msgInvalidTeacherID = "некорректный ID преподавателя"
	msgTeacherNotFound  = "преподаватель не найден"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/teachers/{teacherId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	teacherID, err := strconv.ParseInt(vars["teacherId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /teachers/{id}/availability - Invalid teacher ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTeacherID)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), teacherID)
	if err != nil {
		switch {
		case errors.Is(err, availabilityService.ErrTeacherNotFound):
			h.logger.Warn("GET /teachers/{id}/availability - Teacher not found: teacher_id=%d", teacherID)
			handlers.RespondNotFound(w, msgTeacherNotFound)

		default:
			h.logger.Error("GET /teachers/{id}/availability - Failed to get availability: teacher_id=%d, error=%v",
				teacherID, err)
			handlers.RespondServerError(w, err)
		}
		return
	}

	h.logger.Info("GET /teachers/{id}/availability - Availability retrieved: teacher_id=%d", teacherID)
	handlers.RespondJSON(w, http.StatusOK, profile)
}
