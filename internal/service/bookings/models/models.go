package models

import (
	"errors"
	"time"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// SetStatusRequest запрос на смену статуса бронирования
type SetStatusRequest struct {
	ActorID int64  `json:"actorId"`
	Status  string `json:"status"`
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	ActorID            int64  `json:"actorId"`
	CancellationReason string `json:"cancellationReason"`
}

// GetTeacherBookingsRequest запрос на получение бронирований преподавателя
type GetTeacherBookingsRequest struct {
	TeacherID int64   `json:"teacherId"`
	ActorID   int64   `json:"actorId"`
	Status    *string `json:"status,omitempty"`
}

// GetStudentBookingsRequest запрос на получение бронирований студента
type GetStudentBookingsRequest struct {
	StudentID int64   `json:"studentId"`
	ActorID   int64   `json:"actorId"`
	Status    *string `json:"status,omitempty"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID        int64   `json:"id"`
	TeacherID int64   `json:"teacherId"`
	StudentID int64   `json:"studentId"`
	Subject   string  `json:"subject"`
	ModuleID  *string `json:"moduleId,omitempty"`

	BookingDate string `json:"bookingDate"` // "2025-10-15", в зоне преподавателя
	StartTime   string `json:"startTime"`   // "10:00"
	EndTime     string `json:"endTime"`     // "11:00"

	StartUTC time.Time `json:"startUtc"`
	EndUTC   time.Time `json:"endUtc"`

	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO.
// Статус берется эффективный на момент now: подтвержденное занятие,
// которое уже закончилось, отдается как completed.
func FromDomainBooking(b *domain.Booking, now time.Time) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:          b.ID,
		TeacherID:   b.TeacherID,
		StudentID:   b.StudentID,
		Subject:     b.Subject,
		ModuleID:    b.ModuleID,
		BookingDate: b.BookingDate.Format(domain.DateFormat),
		StartTime:   b.StartTime.String(),
		EndTime:     b.EndTime.String(),
		StartUTC:    b.StartUTC,
		EndUTC:      b.EndUTC,
		Status:      string(b.EffectiveStatus(now)),
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}

	resp.CancellationReason = b.CancellationReason
	if b.CancelledAt != nil {
		cancelledAt := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledAt
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking, now time.Time) *BookingListResponse {
	result := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, *FromDomainBooking(b, now))
	}
	return &BookingListResponse{Bookings: result}
}

// ToDomainBookingStatus конвертирует строку в domain статус
func ToDomainBookingStatus(s string) (domain.BookingStatus, error) {
	status := domain.BookingStatus(s)
	if !domain.ValidBookingStatus(status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}
