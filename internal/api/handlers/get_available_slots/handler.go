package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/ekazarov/TMS-BookingService/internal/api/handlers"
	"github.com/ekazarov/TMS-BookingService/internal/api/middleware"
	"github.com/ekazarov/TMS-BookingService/internal/domain"
	getSlots "github.com/ekazarov/TMS-BookingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidTeacherID = "некорректный ID преподавателя"
	msgInvalidFrom      = "некорректная дата начала окна, ожидается YYYY-MM-DD"
	msgInvalidDays      = "некорректный размер окна"
	msgTeacherNotFound  = "преподаватель не найден"
	msgMissingUserID    = "отсутствует ID пользователя"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/teachers/{teacherId}/available-slots?from=YYYY-MM-DD&days=N
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	teacherID, err := strconv.ParseInt(vars["teacherId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /teachers/{id}/available-slots - Invalid teacher ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTeacherID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /teachers/{id}/available-slots - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req := &getSlots.Request{
		UserID:    userID,
		TeacherID: teacherID,
	}

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err := time.Parse(domain.DateFormat, fromStr)
		if err != nil {
			h.logger.Warn("GET /teachers/{id}/available-slots - Invalid from=%q: %v", fromStr, err)
			handlers.RespondBadRequest(w, msgInvalidFrom)
			return
		}
		req.From = from
	}

	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			h.logger.Warn("GET /teachers/{id}/available-slots - Invalid days=%q: %v", daysStr, err)
			handlers.RespondBadRequest(w, msgInvalidDays)
			return
		}
		req.Days = days
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, getSlots.ErrTeacherNotFound):
			h.logger.Warn("GET /teachers/{id}/available-slots - Teacher not found: teacher_id=%d", teacherID)
			handlers.RespondNotFound(w, msgTeacherNotFound)

		case errors.Is(err, getSlots.ErrInvalidHorizon):
			h.logger.Warn("GET /teachers/{id}/available-slots - Invalid horizon: teacher_id=%d, days=%d",
				teacherID, req.Days)
			handlers.RespondBadRequest(w, msgInvalidDays)

		case errors.Is(err, getSlots.ErrInvalidInput):
			h.logger.Warn("GET /teachers/{id}/available-slots - Invalid input: teacher_id=%d", teacherID)
			handlers.RespondBadRequest(w, msgInvalidTeacherID)

		default:
			h.logger.Error("GET /teachers/{id}/available-slots - Failed to get slots: teacher_id=%d, error=%v",
				teacherID, err)
			handlers.RespondServerError(w, err)
		}
		return
	}

	h.logger.Info("GET /teachers/{id}/available-slots - Slots retrieved: teacher_id=%d, days=%d",
		teacherID, result.Days)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
