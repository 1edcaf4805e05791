package get_available_slots

import (
	"github.com/ekazarov/TMS-BookingService/internal/domain"
	getSlots "github.com/ekazarov/TMS-BookingService/internal/usecase/get_available_slots"
)

// SlotResponse HTTP модель одного слота
type SlotResponse struct {
	ID        string `json:"id"`        // детерминированный UUID слота
	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "11:00"
}

// DaySlotsResponse слоты одного дня
type DaySlotsResponse struct {
	Date  string         `json:"date"` // "2025-10-15"
	Slots []SlotResponse `json:"slots"`
}

// AvailableSlotsResponse HTTP модель ответа
type AvailableSlotsResponse struct {
	TeacherID int64              `json:"teacherId"`
	Timezone  string             `json:"timezone"`
	From      string             `json:"from"`
	Days      int                `json:"days"`
	Schedule  []DaySlotsResponse `json:"schedule"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getSlots.Response) *AvailableSlotsResponse {
	schedule := make([]DaySlotsResponse, 0, len(resp.Schedule))
	for _, day := range resp.Schedule {
		slots := make([]SlotResponse, 0, len(day.Slots))
		for _, slot := range day.Slots {
			slots = append(slots, SlotResponse{
				ID:        slot.ID,
				StartTime: slot.StartTime.String(),
				EndTime:   slot.EndTime.String(),
			})
		}
		schedule = append(schedule, DaySlotsResponse{
			Date:  day.Date.Format(domain.DateFormat),
			Slots: slots,
		})
	}

	return &AvailableSlotsResponse{
		TeacherID: resp.TeacherID,
		Timezone:  resp.Timezone,
		From:      resp.From.Format(domain.DateFormat),
		Days:      resp.Days,
		Schedule:  schedule,
	}
}
