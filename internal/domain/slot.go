package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ekazarov/TMS-BookingService/pkg/types"
)

// slotNamespace namespace for deterministic slot IDs (uuid v5)
var slotNamespace = uuid.MustParse("8f3c1b46-9c1a-4bd0-93e7-52fa6f50c1d2")

// Slot is a resolved, bookable time window for one concrete date.
// Ephemeral: produced by the availability resolver, never persisted.
type Slot struct {
	ID        string
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
}

// NewSlot materializes a slot with its deterministic identity
func NewSlot(teacherID int64, date time.Time, startTime, endTime types.TimeString) Slot {
	return Slot{
		ID:        SlotID(teacherID, date, startTime, endTime),
		Date:      DateOnly(date),
		StartTime: startTime,
		EndTime:   endTime,
	}
}

// SlotID derives the deterministic slot identity from (teacherID, date, startTime, endTime).
// The same underlying rule always yields the same ID across resolutions, which is
// what lets the booking path re-check a slot selected earlier by the caller.
func SlotID(teacherID int64, date time.Time, startTime, endTime types.TimeString) string {
	key := fmt.Sprintf("%d|%s|%s|%s", teacherID, date.Format(DateFormat), startTime, endTime)
	return uuid.NewSHA1(slotNamespace, []byte(key)).String()
}

// DaySlots groups the resolved slots of one calendar date, ordered by start time
type DaySlots struct {
	Date  time.Time
	Slots []Slot
}
