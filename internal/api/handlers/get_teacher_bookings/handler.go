package get_teacher_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ekazarov/TMS-BookingService/internal/api/handlers"
	"github.com/ekazarov/TMS-BookingService/internal/api/middleware"
	"github.com/ekazarov/TMS-BookingService/internal/service/bookings"
	"github.com/ekazarov/TMS-BookingService/internal/service/bookings/models"
)

const (
	msgInvalidTeacherID = "некорректный ID преподавателя"
	msgInvalidStatus    = "некорректный статус бронирования"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgForbidden        = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/teachers/{teacherId}/bookings?status=confirmed
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	teacherID, err := strconv.ParseInt(vars["teacherId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /teachers/{id}/bookings - Invalid teacher ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTeacherID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /teachers/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req := &models.GetTeacherBookingsRequest{
		TeacherID: teacherID,
		ActorID:   userID,
	}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.GetTeacherBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /teachers/{id}/bookings - Access denied: teacher_id=%d, user_id=%d",
				teacherID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidStatus):
			h.logger.Warn("GET /teachers/{id}/bookings - Invalid status filter: teacher_id=%d", teacherID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /teachers/{id}/bookings - Failed to get bookings: teacher_id=%d, error=%v",
				teacherID, err)
			handlers.RespondServerError(w, err)
		}
		return
	}

	h.logger.Info("GET /teachers/{id}/bookings - Retrieved %d bookings: teacher_id=%d",
		len(result.Bookings), teacherID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
