package book_slot

import (
	"time"

	"github.com/ekazarov/TMS-BookingService/pkg/types"
)

// Request модель запроса на бронирование слота
type Request struct {
	StudentID int64            // ID студента (из заголовка аутентификации)
	TeacherID int64            // ID преподавателя
	Subject   string           // Предмет занятия
	ModuleID  *string          // Необязательный ID учебного модуля
	Date      time.Time        // Дата занятия (в зоне преподавателя, без времени)
	StartTime types.TimeString // Время начала слота
	EndTime   types.TimeString // Время конца слота
	Notes     *string          // Заметки студента для преподавателя
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID        int64            // ID бронирования
	SlotID    string           // Детерминированный ID занятого слота
	TeacherID int64            // ID преподавателя
	StudentID int64            // ID студента
	Subject   string           // Предмет занятия
	ModuleID  *string          // ID учебного модуля
	Date      time.Time        // Дата занятия в зоне преподавателя
	StartTime types.TimeString // Локальное время начала
	EndTime   types.TimeString // Локальное время конца
	StartUTC  time.Time        // UTC-инстант начала занятия
	EndUTC    time.Time        // UTC-инстант конца занятия
	Status    string           // Статус бронирования (всегда pending при создании)
	Notes     *string          // Заметки
	CreatedAt time.Time        // Время создания
}
