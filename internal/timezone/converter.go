package timezone

import (
	"errors"
	"fmt"
	"time"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
	"github.com/ekazarov/TMS-BookingService/pkg/types"
)

var (
	// ErrUnknownZone возвращается при неизвестном идентификаторе IANA зоны
	ErrUnknownZone = errors.New("timezone: unknown zone id")

	// ErrNonexistentLocalTime возвращается, когда локальное время не существует
	// в указанной зоне (пропущено при весеннем переводе часов)
	ErrNonexistentLocalTime = errors.New("timezone: local time does not exist in zone")

	// ErrAmbiguousLocalTime возвращается, когда локальное время существует дважды
	// в указанной зоне (повторяется при осеннем переводе часов)
	ErrAmbiguousLocalTime = errors.New("timezone: local time is ambiguous in zone")
)

// probeWindow запас по времени вокруг наивного UTC-инстанта, в котором ищутся
// возможные смещения зоны. Суток с запасом достаточно для любых переводов часов.
const probeWindow = 26 * time.Hour

// Converter конвертирует локальное время (дата + часы:минуты + IANA зона) в UTC и обратно
type Converter struct{}

// NewConverter создает новый конвертер
func NewConverter() *Converter {
	return &Converter{}
}

// ToUTC конвертирует (дата, локальное время, зона) в UTC-инстант.
// Неоднозначное или несуществующее локальное время (переводы часов) - ошибка,
// молча выбирать одно из смещений нельзя.
func (c *Converter) ToUTC(date time.Time, wallClock types.TimeString, zoneID string) (time.Time, error) {
	loc, err := time.LoadLocation(zoneID)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownZone, zoneID)
	}

	wall, err := wallClock.ToTime()
	if err != nil {
		return time.Time{}, err
	}

	// Наивный инстант: локальная дата и время, прочитанные как UTC
	naive := time.Date(date.Year(), date.Month(), date.Day(), wall.Hour(), wall.Minute(), 0, 0, time.UTC)

	// Перебираем смещения зоны до и после наивного инстанта и проверяем,
	// какие из них дают ровно запрошенное локальное время
	candidates := make([]time.Time, 0, 2)
	for _, offset := range probeOffsets(naive, loc) {
		candidate := naive.Add(-time.Duration(offset) * time.Second)
		local := candidate.In(loc)
		if local.Year() == date.Year() && local.Month() == date.Month() && local.Day() == date.Day() &&
			local.Hour() == wall.Hour() && local.Minute() == wall.Minute() {
			candidates = append(candidates, candidate)
		}
	}

	switch len(candidates) {
	case 0:
		return time.Time{}, fmt.Errorf("%w: %s %s in %s",
			ErrNonexistentLocalTime, date.Format(domain.DateFormat), wallClock, zoneID)
	case 1:
		return candidates[0], nil
	default:
		return time.Time{}, fmt.Errorf("%w: %s %s in %s",
			ErrAmbiguousLocalTime, date.Format(domain.DateFormat), wallClock, zoneID)
	}
}

// FromUTC конвертирует UTC-инстант в локальную дату и время указанной зоны
func (c *Converter) FromUTC(instant time.Time, zoneID string) (time.Time, types.TimeString, error) {
	loc, err := time.LoadLocation(zoneID)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %q", ErrUnknownZone, zoneID)
	}

	local := instant.In(loc)
	return domain.DateOnly(local), types.NewTimeString(local), nil
}

// probeOffsets возвращает уникальные смещения зоны (в секундах) в окне вокруг инстанта
func probeOffsets(instant time.Time, loc *time.Location) []int {
	_, before := instant.Add(-probeWindow).In(loc).Zone()
	_, after := instant.Add(probeWindow).In(loc).Zone()

	if before == after {
		return []int{before}
	}
	return []int{before, after}
}
