package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/ekazarov/TMS-BookingService/pkg/types"
)

var (
	// ErrInvalidTimeRange returned when a slot's start time is not before its end time
	ErrInvalidTimeRange = errors.New("domain: start time must be before end time")

	// ErrInvalidDateRange returned when a break period's end date precedes its start date
	ErrInvalidDateRange = errors.New("domain: start date must not be after end date")

	// ErrInvalidDayOfWeek returned when a recurring slot's weekday is out of range
	ErrInvalidDayOfWeek = errors.New("domain: day of week must be in range 0..6")

	// ErrInvalidBreakKind returned for an unknown break period kind
	ErrInvalidBreakKind = errors.New("domain: break kind must be 'break' or 'leave'")
)

// BreakKind distinguishes short breaks from longer leave periods
type BreakKind string

const (
	BreakKindBreak BreakKind = "break"
	BreakKindLeave BreakKind = "leave"
)

// RecurringSlot is a weekly-repeating bookable window in the teacher's local time
type RecurringSlot struct {
	ID        int64
	DayOfWeek time.Weekday
	StartTime types.TimeString
	EndTime   types.TimeString
}

// NewRecurringSlot validates and constructs a recurring slot
func NewRecurringSlot(dayOfWeek time.Weekday, startTime, endTime types.TimeString) (RecurringSlot, error) {
	if dayOfWeek < time.Sunday || dayOfWeek > time.Saturday {
		return RecurringSlot{}, fmt.Errorf("%w: got %d", ErrInvalidDayOfWeek, dayOfWeek)
	}
	if err := validateTimeWindow(startTime, endTime); err != nil {
		return RecurringSlot{}, err
	}
	return RecurringSlot{DayOfWeek: dayOfWeek, StartTime: startTime, EndTime: endTime}, nil
}

// SpecificDateSlot adds availability for one exact calendar date,
// layered on top of any recurring slot for that weekday
type SpecificDateSlot struct {
	ID        int64
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
}

// NewSpecificDateSlot validates and constructs a specific-date slot
func NewSpecificDateSlot(date time.Time, startTime, endTime types.TimeString) (SpecificDateSlot, error) {
	if date.IsZero() {
		return SpecificDateSlot{}, fmt.Errorf("%w: date is required", ErrInvalidDateRange)
	}
	if err := validateTimeWindow(startTime, endTime); err != nil {
		return SpecificDateSlot{}, err
	}
	return SpecificDateSlot{Date: DateOnly(date), StartTime: startTime, EndTime: endTime}, nil
}

// BreakPeriod is a date range during which the teacher is fully unavailable.
// Break periods subtract availability, they never add it back.
type BreakPeriod struct {
	ID        int64
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	Kind      BreakKind
}

// NewBreakPeriod validates and constructs a break period
func NewBreakPeriod(startDate, endDate time.Time, reason string, kind BreakKind) (BreakPeriod, error) {
	if startDate.IsZero() || endDate.IsZero() {
		return BreakPeriod{}, fmt.Errorf("%w: start and end dates are required", ErrInvalidDateRange)
	}
	start, end := DateOnly(startDate), DateOnly(endDate)
	if end.Before(start) {
		return BreakPeriod{}, fmt.Errorf("%w: %s > %s", ErrInvalidDateRange,
			start.Format(DateFormat), end.Format(DateFormat))
	}
	if kind != BreakKindBreak && kind != BreakKindLeave {
		return BreakPeriod{}, fmt.Errorf("%w: got %q", ErrInvalidBreakKind, kind)
	}
	return BreakPeriod{StartDate: start, EndDate: end, Reason: reason, Kind: kind}, nil
}

// Contains reports whether date falls inside [StartDate, EndDate], inclusive on both ends
func (p *BreakPeriod) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// AvailabilityProfile holds a teacher's complete set of availability rules.
// Created lazily with the default weekly template the first time the
// teacher's availability is requested; never hard-deleted.
type AvailabilityProfile struct {
	TeacherID int64
	Recurring []RecurringSlot
	Specific  []SpecificDateSlot
	Breaks    []BreakPeriod
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OnBreak reports whether the teacher is unavailable on the given date
func (p *AvailabilityProfile) OnBreak(date time.Time) bool {
	for i := range p.Breaks {
		if p.Breaks[i].Contains(date) {
			return true
		}
	}
	return false
}

// DefaultWeeklyTemplate returns the recurring template a teacher starts with:
// Monday through Friday, DefaultDayStart to DefaultDayEnd
func DefaultWeeklyTemplate() []RecurringSlot {
	days := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	slots := make([]RecurringSlot, 0, len(days))
	for _, day := range days {
		slots = append(slots, RecurringSlot{
			DayOfWeek: day,
			StartTime: DefaultDayStart,
			EndTime:   DefaultDayEnd,
		})
	}
	return slots
}

// DateOnly truncates a timestamp to its calendar date (midnight, same location)
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// validateTimeWindow checks that start < end within the same day
func validateTimeWindow(startTime, endTime types.TimeString) error {
	if err := startTime.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	if err := endTime.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	if !startTime.IsBefore(endTime) {
		return fmt.Errorf("%w: %s >= %s", ErrInvalidTimeRange, startTime, endTime)
	}
	return nil
}
