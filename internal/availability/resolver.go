package availability

import (
	"sort"
	"time"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
)

// Resolver разворачивает правила доступности преподавателя в конкретные слоты.
// Не выполняет I/O и не хранит состояние: одинаковые входные данные всегда
// дают одинаковый результат (включая детерминированные ID слотов).
type Resolver struct{}

// NewResolver создает новый резолвер доступности
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve возвращает бронируемые слоты по дням для окна [from, from+horizonDays).
// today - текущая дата в зоне преподавателя; дни раньше today не разворачиваются,
// окно всегда начинается не раньше текущей даты.
//
// Для каждой даты:
//  1. Дата внутри перерыва/отпуска - день пустой, остальные правила не применяются.
//  2. Иначе слоты дня - объединение повторяющихся слотов этого дня недели
//     и разовых слотов на эту дату, отсортированное по времени начала.
//     Пересечения и дубли не схлопываются - выбор слота остается за вызывающим.
func (r *Resolver) Resolve(profile *domain.AvailabilityProfile, from time.Time, horizonDays int, today time.Time) []domain.DaySlots {
	start := domain.DateOnly(from)
	todayOnly := domain.DateOnly(today)
	if start.Before(todayOnly) {
		start = todayOnly
	}

	days := make([]domain.DaySlots, 0, horizonDays)
	for i := 0; i < horizonDays; i++ {
		date := start.AddDate(0, 0, i)
		days = append(days, domain.DaySlots{
			Date:  date,
			Slots: r.resolveDay(profile, date),
		})
	}

	return days
}

// ResolveDate возвращает слоты одной конкретной даты
func (r *Resolver) ResolveDate(profile *domain.AvailabilityProfile, date time.Time, today time.Time) []domain.Slot {
	if domain.DateOnly(date).Before(domain.DateOnly(today)) {
		return []domain.Slot{}
	}
	return r.resolveDay(profile, domain.DateOnly(date))
}

func (r *Resolver) resolveDay(profile *domain.AvailabilityProfile, date time.Time) []domain.Slot {
	// Перерыв полностью гасит день
	if profile.OnBreak(date) {
		return []domain.Slot{}
	}

	slots := make([]domain.Slot, 0)

	weekday := date.Weekday()
	for i := range profile.Recurring {
		rule := &profile.Recurring[i]
		if rule.DayOfWeek != weekday {
			continue
		}
		slots = append(slots, domain.NewSlot(profile.TeacherID, date, rule.StartTime, rule.EndTime))
	}

	for i := range profile.Specific {
		rule := &profile.Specific[i]
		if !domain.DateOnly(rule.Date).Equal(date) {
			continue
		}
		slots = append(slots, domain.NewSlot(profile.TeacherID, date, rule.StartTime, rule.EndTime))
	}

	// Стабильная сортировка: при равном времени начала сохраняется порядок
	// "повторяющиеся, затем разовые"
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartTime.IsBefore(slots[j].StartTime)
	})

	return slots
}
