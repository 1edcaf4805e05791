package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
	"github.com/ekazarov/TMS-BookingService/pkg/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mondaySlot(start, end string) domain.RecurringSlot {
	return domain.RecurringSlot{
		DayOfWeek: time.Monday,
		StartTime: types.TimeString(start),
		EndTime:   types.TimeString(end),
	}
}

func TestResolve_RecurringSlotMaterialized(t *testing.T) {
	r := NewResolver()
	profile := &domain.AvailabilityProfile{
		TeacherID: 42,
		Recurring: []domain.RecurringSlot{mondaySlot("09:00", "10:00")},
	}

	// 2024-06-10 - понедельник
	days := r.Resolve(profile, date(2024, time.June, 10), 7, date(2024, time.June, 10))
	require.Len(t, days, 7)

	require.Len(t, days[0].Slots, 1)
	assert.Equal(t, types.TimeString("09:00"), days[0].Slots[0].StartTime)
	assert.Equal(t, types.TimeString("10:00"), days[0].Slots[0].EndTime)
	assert.True(t, days[0].Date.Equal(date(2024, time.June, 10)))

	// Остальные дни недели пустые
	for _, day := range days[1:] {
		assert.Empty(t, day.Slots, "unexpected slots on %s", day.Date.Format(domain.DateFormat))
	}
}

func TestResolve_BreakDominatesEverything(t *testing.T) {
	r := NewResolver()

	// Понедельник 2024-06-17: повторяющийся слот 09:00-10:00, разовый 14:00-15:00
	// и перерыв ровно на этот день. Перерыв гасит всё.
	profile := &domain.AvailabilityProfile{
		TeacherID: 42,
		Recurring: []domain.RecurringSlot{mondaySlot("09:00", "10:00")},
		Specific: []domain.SpecificDateSlot{
			{Date: date(2024, time.June, 17), StartTime: "14:00", EndTime: "15:00"},
		},
		Breaks: []domain.BreakPeriod{
			{StartDate: date(2024, time.June, 17), EndDate: date(2024, time.June, 17), Kind: domain.BreakKindBreak},
		},
	}

	days := r.Resolve(profile, date(2024, time.June, 17), 8, date(2024, time.June, 17))
	require.Len(t, days, 8)

	assert.Empty(t, days[0].Slots, "break day must yield zero slots")

	// Следующий понедельник (2024-06-24) - обычный слот на месте
	next := days[7]
	require.True(t, next.Date.Equal(date(2024, time.June, 24)))
	require.Len(t, next.Slots, 1)
	assert.Equal(t, types.TimeString("09:00"), next.Slots[0].StartTime)
}

func TestResolve_BreakBoundariesInclusive(t *testing.T) {
	r := NewResolver()
	profile := &domain.AvailabilityProfile{
		TeacherID: 7,
		Recurring: []domain.RecurringSlot{
			{DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "10:00"},
			{DayOfWeek: time.Tuesday, StartTime: "09:00", EndTime: "10:00"},
			{DayOfWeek: time.Wednesday, StartTime: "09:00", EndTime: "10:00"},
			{DayOfWeek: time.Thursday, StartTime: "09:00", EndTime: "10:00"},
		},
		Breaks: []domain.BreakPeriod{
			// Вторник и среда
			{StartDate: date(2024, time.June, 11), EndDate: date(2024, time.June, 12), Kind: domain.BreakKindLeave},
		},
	}

	days := r.Resolve(profile, date(2024, time.June, 10), 4, date(2024, time.June, 10))
	require.Len(t, days, 4)

	assert.Len(t, days[0].Slots, 1, "Monday before break")
	assert.Empty(t, days[1].Slots, "break start date inclusive")
	assert.Empty(t, days[2].Slots, "break end date inclusive")
	assert.Len(t, days[3].Slots, 1, "Thursday after break")
}

func TestResolve_UnionOrderedByStartTime(t *testing.T) {
	r := NewResolver()
	profile := &domain.AvailabilityProfile{
		TeacherID: 42,
		Recurring: []domain.RecurringSlot{
			mondaySlot("15:00", "16:00"),
			mondaySlot("09:00", "10:00"),
		},
		Specific: []domain.SpecificDateSlot{
			{Date: date(2024, time.June, 10), StartTime: "11:00", EndTime: "12:00"},
		},
	}

	slots := r.ResolveDate(profile, date(2024, time.June, 10), date(2024, time.June, 10))
	require.Len(t, slots, 3)
	assert.Equal(t, types.TimeString("09:00"), slots[0].StartTime)
	assert.Equal(t, types.TimeString("11:00"), slots[1].StartTime)
	assert.Equal(t, types.TimeString("15:00"), slots[2].StartTime)
}

func TestResolve_OverlappingSlotsSurfacedAsIs(t *testing.T) {
	r := NewResolver()

	// Пересекающиеся правила не схлопываются
	profile := &domain.AvailabilityProfile{
		TeacherID: 42,
		Recurring: []domain.RecurringSlot{
			mondaySlot("09:00", "11:00"),
			mondaySlot("10:00", "12:00"),
		},
	}

	slots := r.ResolveDate(profile, date(2024, time.June, 10), date(2024, time.June, 10))
	assert.Len(t, slots, 2)
}

func TestResolve_PastDatesClamped(t *testing.T) {
	r := NewResolver()
	profile := &domain.AvailabilityProfile{
		TeacherID: 42,
		Recurring: []domain.RecurringSlot{mondaySlot("09:00", "10:00")},
	}

	// from в прошлом: окно сдвигается к today
	days := r.Resolve(profile, date(2024, time.June, 3), 3, date(2024, time.June, 10))
	require.Len(t, days, 3)
	assert.True(t, days[0].Date.Equal(date(2024, time.June, 10)))

	// Конкретная дата в прошлом - пусто
	slots := r.ResolveDate(profile, date(2024, time.June, 3), date(2024, time.June, 10))
	assert.Empty(t, slots)
}

func TestResolve_Idempotent(t *testing.T) {
	r := NewResolver()
	profile := &domain.AvailabilityProfile{
		TeacherID: 42,
		Recurring: domain.DefaultWeeklyTemplate(),
		Specific: []domain.SpecificDateSlot{
			{Date: date(2024, time.June, 15), StartTime: "10:00", EndTime: "11:00"},
		},
	}

	first := r.Resolve(profile, date(2024, time.June, 10), 14, date(2024, time.June, 10))
	second := r.Resolve(profile, date(2024, time.June, 10), 14, date(2024, time.June, 10))

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i], "day %d differs between resolutions", i)
	}
}

func TestSlotID_DeterministicAndDistinct(t *testing.T) {
	d := date(2024, time.June, 10)

	a := domain.SlotID(42, d, "09:00", "10:00")
	b := domain.SlotID(42, d, "09:00", "10:00")
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, domain.SlotID(43, d, "09:00", "10:00"))
	assert.NotEqual(t, a, domain.SlotID(42, d.AddDate(0, 0, 1), "09:00", "10:00"))
	assert.NotEqual(t, a, domain.SlotID(42, d, "09:30", "10:00"))
}
