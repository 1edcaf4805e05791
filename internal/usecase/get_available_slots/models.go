package get_available_slots

import (
	"time"

	"github.com/ekazarov/TMS-BookingService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	UserID    int64     // ID пользователя (для логирования, не влияет на результат)
	TeacherID int64     // ID преподавателя
	From      time.Time // Начало окна (без времени); нулевое значение - с текущей даты
	Days      int       // Размер окна в днях; 0 - значение по умолчанию
}

// Response модель ответа со слотами по дням
type Response struct {
	TeacherID int64             // ID преподавателя
	Timezone  string            // IANA зона преподавателя, в которой заданы слоты
	From      time.Time         // Фактическое начало окна
	Days      int               // Фактический размер окна
	Schedule  []domain.DaySlots // Слоты по дням, дни без слотов включаются пустыми
}
