package book_slot

import (
	"errors"
	"net/http"

	"github.com/ekazarov/TMS-BookingService/internal/api/handlers"
	"github.com/ekazarov/TMS-BookingService/internal/api/middleware"
	"github.com/ekazarov/TMS-BookingService/internal/timezone"
	bookSlot "github.com/ekazarov/TMS-BookingService/internal/usecase/book_slot"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDateOrTime    = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgTeacherNotFound      = "преподаватель не найден"
	msgStudentNotFound      = "студент не найден"
	msgSlotNoLongerAvail    = "слот больше недоступен в расписании преподавателя"
	msgSlotTaken            = "слот уже занят другим бронированием"
	msgDateInPast           = "дата бронирования уже прошла"
	msgNonexistentLocalTime = "указанное локальное время не существует из-за перевода часов"
	msgAmbiguousLocalTime   = "указанное локальное время неоднозначно из-за перевода часов"
	msgMissingUserID        = "отсутствует ID пользователя"
)

type Handler struct {
	useCase BookSlotUseCase
	logger  Logger
}

func NewHandler(useCase BookSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req BookSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(studentID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, bookSlot.ErrSlotTaken):
			h.logger.Warn("POST /bookings - Slot taken: student_id=%d, teacher_id=%d", studentID, req.TeacherID)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, bookSlot.ErrSlotNoLongerAvailable):
			h.logger.Warn("POST /bookings - Slot no longer available: student_id=%d, teacher_id=%d",
				studentID, req.TeacherID)
			handlers.RespondConflict(w, msgSlotNoLongerAvail)

		case errors.Is(err, bookSlot.ErrTeacherNotFound):
			h.logger.Warn("POST /bookings - Teacher not found: teacher_id=%d", req.TeacherID)
			handlers.RespondNotFound(w, msgTeacherNotFound)

		case errors.Is(err, bookSlot.ErrStudentNotFound):
			h.logger.Warn("POST /bookings - Student not found: student_id=%d", studentID)
			handlers.RespondNotFound(w, msgStudentNotFound)

		case errors.Is(err, bookSlot.ErrDateInPast):
			h.logger.Warn("POST /bookings - Date in past: student_id=%d, teacher_id=%d, date=%s",
				studentID, req.TeacherID, req.BookingDate)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, timezone.ErrNonexistentLocalTime):
			h.logger.Warn("POST /bookings - Nonexistent local time: teacher_id=%d, date=%s, time=%s",
				req.TeacherID, req.BookingDate, req.StartTime)
			handlers.RespondBadRequest(w, msgNonexistentLocalTime)

		case errors.Is(err, timezone.ErrAmbiguousLocalTime):
			h.logger.Warn("POST /bookings - Ambiguous local time: teacher_id=%d, date=%s, time=%s",
				req.TeacherID, req.BookingDate, req.StartTime)
			handlers.RespondBadRequest(w, msgAmbiguousLocalTime)

		case errors.Is(err, timezone.ErrUnknownZone):
			h.logger.Error("POST /bookings - Unknown teacher timezone: teacher_id=%d, error=%v",
				req.TeacherID, err)
			handlers.RespondInternalError(w)

		case errors.Is(err, bookSlot.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: student_id=%d, error=%v", studentID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /bookings - Failed to book slot: student_id=%d, teacher_id=%d, error=%v",
				studentID, req.TeacherID, err)
			handlers.RespondServerError(w, err)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, student_id=%d, teacher_id=%d",
		result.ID, studentID, req.TeacherID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
