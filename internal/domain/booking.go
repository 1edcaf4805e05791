package domain

import (
	"time"

	"github.com/ekazarov/TMS-BookingService/pkg/types"
)

// BookingStatus represents the status of a lesson booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
)

// Допустимые переходы статусов:
// pending -> confirmed | rejected | cancelled
// confirmed -> completed | cancelled
// completed, rejected, cancelled - терминальные
var statusTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// Booking represents a lesson reservation between a student and a teacher
type Booking struct {
	ID        int64
	TeacherID int64
	StudentID int64

	Subject  string
	ModuleID *string

	// Local wall-clock time in the teacher's zone
	BookingDate time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString

	// UTC instants of the lesson bounds
	StartUTC time.Time
	EndUTC   time.Time

	Status BookingStatus
	Notes  *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies its slot
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsTerminal returns true if the booking reached a final state
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusRejected || b.Status == StatusCancelled
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanTransitionTo reports whether newStatus is reachable from the current status
func (b *Booking) CanTransitionTo(newStatus BookingStatus) bool {
	for _, s := range statusTransitions[b.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// EffectiveStatus returns the status as of now: a confirmed booking whose end
// has passed is reported as completed. The stored status is not modified,
// completion is derived on read.
func (b *Booking) EffectiveStatus(now time.Time) BookingStatus {
	if b.Status == StatusConfirmed && !b.EndUTC.IsZero() && now.After(b.EndUTC) {
		return StatusCompleted
	}
	return b.Status
}

// IsParty returns true if userID is the booking's teacher or student
func (b *Booking) IsParty(userID int64) bool {
	return b.TeacherID == userID || b.StudentID == userID
}

// TeacherOnlyStatus reports whether the target status may be set only by the teacher
func TeacherOnlyStatus(status BookingStatus) bool {
	return status == StatusConfirmed || status == StatusRejected
}

// ValidBookingStatus reports whether s is a known booking status
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}
