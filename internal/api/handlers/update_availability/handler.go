package update_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ekazarov/TMS-BookingService/internal/api/handlers"
	"github.com/ekazarov/TMS-BookingService/internal/api/middleware"
	availabilityService "github.com/ekazarov/TMS-BookingService/internal/service/availability"
	"github.com/ekazarov/TMS-BookingService/internal/service/availability/models"
)

const (
	msgInvalidTeacherID   = "некорректный ID преподавателя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidRules       = "некорректные правила доступности"
	msgTeacherNotFound    = "преподаватель не найден"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "менять расписание может только сам преподаватель"
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

// Handle PUT /api/v1/teachers/{teacherId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	teacherID, err := strconv.ParseInt(vars["teacherId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /teachers/{id}/availability - Invalid teacher ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTeacherID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /teachers/{id}/availability - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.UpdateAvailabilityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /teachers/{id}/availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.TeacherID = teacherID
	req.ActorID = userID

	result, err := h.service.ReplaceRules(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, availabilityService.ErrAccessDenied):
			h.logger.Warn("PUT /teachers/{id}/availability - Access denied: teacher_id=%d, user_id=%d",
				teacherID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, availabilityService.ErrTeacherNotFound):
			h.logger.Warn("PUT /teachers/{id}/availability - Teacher not found: teacher_id=%d", teacherID)
			handlers.RespondNotFound(w, msgTeacherNotFound)

		case errors.Is(err, availabilityService.ErrInvalidInput):
			h.logger.Warn("PUT /teachers/{id}/availability - Invalid rules: teacher_id=%d, error=%v",
				teacherID, err)
			handlers.RespondBadRequest(w, msgInvalidRules)

		default:
			h.logger.Error("PUT /teachers/{id}/availability - Failed to update availability: teacher_id=%d, error=%v",
				teacherID, err)
			handlers.RespondServerError(w, err)
		}
		return
	}

	h.logger.Info("PUT /teachers/{id}/availability - Availability updated: teacher_id=%d, rules=%d/%d/%d",
		teacherID, len(result.Recurring), len(result.Specific), len(result.Breaks))
	handlers.RespondJSON(w, http.StatusOK, result)
}
