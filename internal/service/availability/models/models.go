package models

import (
	"fmt"
	"time"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
	"github.com/ekazarov/TMS-BookingService/pkg/types"
)

// Request модели

// RecurringSlotPayload повторяющийся слот в запросе/ответе
type RecurringSlotPayload struct {
	ID        int64  `json:"id,omitempty"`
	DayOfWeek int    `json:"dayOfWeek"` // 0 - воскресенье ... 6 - суббота
	StartTime string `json:"startTime"` // "09:00"
	EndTime   string `json:"endTime"`   // "17:00"
}

// SpecificDateSlotPayload разовый слот на конкретную дату
type SpecificDateSlotPayload struct {
	ID        int64  `json:"id,omitempty"`
	Date      string `json:"date"` // "2025-10-15"
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// BreakPeriodPayload период недоступности
type BreakPeriodPayload struct {
	ID        int64  `json:"id,omitempty"`
	StartDate string `json:"startDate"` // "2025-10-15", включительно
	EndDate   string `json:"endDate"`   // "2025-10-20", включительно
	Reason    string `json:"reason,omitempty"`
	Kind      string `json:"kind"` // "break" или "leave"
}

// UpdateAvailabilityRequest запрос на полную замену правил доступности
type UpdateAvailabilityRequest struct {
	TeacherID int64                     `json:"-"`
	ActorID   int64                     `json:"-"`
	Recurring []RecurringSlotPayload    `json:"recurringSlots"`
	Specific  []SpecificDateSlotPayload `json:"specificDateSlots"`
	Breaks    []BreakPeriodPayload      `json:"breakPeriods"`
}

// Response модели

// AvailabilityResponse ответ с правилами доступности преподавателя
type AvailabilityResponse struct {
	TeacherID int64                     `json:"teacherId"`
	Recurring []RecurringSlotPayload    `json:"recurringSlots"`
	Specific  []SpecificDateSlotPayload `json:"specificDateSlots"`
	Breaks    []BreakPeriodPayload      `json:"breakPeriods"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

// Методы конвертации

// ToDomainProfile конвертирует запрос в доменный профиль.
// Каждое правило проходит доменную валидацию при конструировании.
func (r *UpdateAvailabilityRequest) ToDomainProfile() (*domain.AvailabilityProfile, error) {
	profile := &domain.AvailabilityProfile{
		TeacherID: r.TeacherID,
		Recurring: make([]domain.RecurringSlot, 0, len(r.Recurring)),
		Specific:  make([]domain.SpecificDateSlot, 0, len(r.Specific)),
		Breaks:    make([]domain.BreakPeriod, 0, len(r.Breaks)),
	}

	for _, payload := range r.Recurring {
		start, end, err := parseTimes(payload.StartTime, payload.EndTime)
		if err != nil {
			return nil, err
		}
		slot, err := domain.NewRecurringSlot(time.Weekday(payload.DayOfWeek), start, end)
		if err != nil {
			return nil, err
		}
		profile.Recurring = append(profile.Recurring, slot)
	}

	for _, payload := range r.Specific {
		date, err := time.Parse(domain.DateFormat, payload.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %v", payload.Date, err)
		}
		start, end, err := parseTimes(payload.StartTime, payload.EndTime)
		if err != nil {
			return nil, err
		}
		slot, err := domain.NewSpecificDateSlot(date, start, end)
		if err != nil {
			return nil, err
		}
		profile.Specific = append(profile.Specific, slot)
	}

	for _, payload := range r.Breaks {
		startDate, err := time.Parse(domain.DateFormat, payload.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q: %v", payload.StartDate, err)
		}
		endDate, err := time.Parse(domain.DateFormat, payload.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q: %v", payload.EndDate, err)
		}
		period, err := domain.NewBreakPeriod(startDate, endDate, payload.Reason, domain.BreakKind(payload.Kind))
		if err != nil {
			return nil, err
		}
		profile.Breaks = append(profile.Breaks, period)
	}

	return profile, nil
}

// FromDomainProfile конвертирует доменный профиль в DTO
func FromDomainProfile(p *domain.AvailabilityProfile) *AvailabilityResponse {
	resp := &AvailabilityResponse{
		TeacherID: p.TeacherID,
		Recurring: make([]RecurringSlotPayload, 0, len(p.Recurring)),
		Specific:  make([]SpecificDateSlotPayload, 0, len(p.Specific)),
		Breaks:    make([]BreakPeriodPayload, 0, len(p.Breaks)),
		UpdatedAt: p.UpdatedAt,
	}

	for _, slot := range p.Recurring {
		resp.Recurring = append(resp.Recurring, RecurringSlotPayload{
			ID:        slot.ID,
			DayOfWeek: int(slot.DayOfWeek),
			StartTime: slot.StartTime.String(),
			EndTime:   slot.EndTime.String(),
		})
	}

	for _, slot := range p.Specific {
		resp.Specific = append(resp.Specific, SpecificDateSlotPayload{
			ID:        slot.ID,
			Date:      slot.Date.Format(domain.DateFormat),
			StartTime: slot.StartTime.String(),
			EndTime:   slot.EndTime.String(),
		})
	}

	for _, period := range p.Breaks {
		resp.Breaks = append(resp.Breaks, BreakPeriodPayload{
			ID:        period.ID,
			StartDate: period.StartDate.Format(domain.DateFormat),
			EndDate:   period.EndDate.Format(domain.DateFormat),
			Reason:    period.Reason,
			Kind:      string(period.Kind),
		})
	}

	return resp
}

func parseTimes(startTime, endTime string) (types.TimeString, types.TimeString, error) {
	start, err := types.NewTimeStringFromString(startTime)
	if err != nil {
		return "", "", fmt.Errorf("invalid start time %q: %v", startTime, err)
	}
	end, err := types.NewTimeStringFromString(endTime)
	if err != nil {
		return "", "", fmt.Errorf("invalid end time %q: %v", endTime, err)
	}
	return start, end, nil
}
