package book_slot

import (
	"time"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
	bookSlot "github.com/ekazarov/TMS-BookingService/internal/usecase/book_slot"
	"github.com/ekazarov/TMS-BookingService/pkg/types"
)

// BookSlotRequest HTTP request model
type BookSlotRequest struct {
	TeacherID   int64   `json:"teacherId"`
	Subject     string  `json:"subject"`
	ModuleID    *string `json:"moduleId,omitempty"`
	BookingDate string  `json:"bookingDate"` // "2025-10-15", в зоне преподавателя
	StartTime   string  `json:"startTime"`   // "10:00"
	EndTime     string  `json:"endTime"`     // "11:00"
	Notes       *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID          int64   `json:"id"`
	SlotID      string  `json:"slotId"`
	TeacherID   int64   `json:"teacherId"`
	StudentID   int64   `json:"studentId"`
	Subject     string  `json:"subject"`
	ModuleID    *string `json:"moduleId,omitempty"`
	BookingDate string  `json:"bookingDate"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	StartUTC    string  `json:"startUtc"` // ISO 8601
	EndUTC      string  `json:"endUtc"`   // ISO 8601
	Status      string  `json:"status"`
	Notes       *string `json:"notes,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *BookSlotRequest) ToUseCaseRequest(studentID int64) (*bookSlot.Request, error) {
	bookingDate, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	endTime, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, err
	}

	return &bookSlot.Request{
		StudentID: studentID,
		TeacherID: r.TeacherID,
		Subject:   r.Subject,
		ModuleID:  r.ModuleID,
		Date:      bookingDate,
		StartTime: startTime,
		EndTime:   endTime,
		Notes:     r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *bookSlot.Response) *BookingResponse {
	return &BookingResponse{
		ID:          resp.ID,
		SlotID:      resp.SlotID,
		TeacherID:   resp.TeacherID,
		StudentID:   resp.StudentID,
		Subject:     resp.Subject,
		ModuleID:    resp.ModuleID,
		BookingDate: resp.Date.Format(domain.DateFormat),
		StartTime:   resp.StartTime.String(),
		EndTime:     resp.EndTime.String(),
		StartUTC:    resp.StartUTC.UTC().Format(time.RFC3339),
		EndUTC:      resp.EndUTC.UTC().Format(time.RFC3339),
		Status:      resp.Status,
		Notes:       resp.Notes,
		CreatedAt:   resp.CreatedAt.Format(time.RFC3339),
	}
}
