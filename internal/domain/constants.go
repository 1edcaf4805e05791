package domain

import "github.com/ekazarov/TMS-BookingService/pkg/types"

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Default weekly template bounds
const (
	DefaultDayStart types.TimeString = "09:00"
	DefaultDayEnd   types.TimeString = "17:00"
)

// Availability horizon limits
const (
	DefaultHorizonDays = 14
	MaxHorizonDays     = 60
)

// Business validation constants
const (
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxSubjectLength            = 120
	MaxBreakReasonLength        = 300
)

// ActiveStatuses статусы, при которых бронирование занимает слот
// Используется при проверке конфликтов бронирований
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// TerminalStatuses терминальные статусы бронирований
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusRejected,
	StatusCancelled,
}
