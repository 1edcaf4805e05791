package get_student_bookings

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
	msgInvalidStudentID = "некорректный ID студента"
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

// Handle GET /api/v1/students/{studentId}/bookings?status=pending
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	studentID, err := strconv.ParseInt(vars["studentId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /students/{id}/bookings - Invalid student ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStudentID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /students/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req := &models.GetStudentBookingsRequest{
		StudentID: studentID,
		ActorID:   userID,
	}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.GetStudentBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /students/{id}/bookings - Access denied: student_id=%d, user_id=%d",
				studentID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidStatus):
			h.logger.Warn("GET /students/{id}/bookings - Invalid status filter: student_id=%d", studentID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /students/{id}/bookings - Failed to get bookings: student_id=%d, error=%v",
				studentID, err)
			handlers.RespondServerError(w, err)
		}
		return
	}

	h.logger.Info("GET /students/{id}/bookings - Retrieved %d bookings: student_id=%d",
		len(result.Bookings), studentID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
