package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotTaken возвращается, когда слот уже занят активным бронированием.
	// Источник - уникальный частичный индекс uq_bookings_active_slot:
	// проверка занятости и вставка выполняются атомарно на стороне БД.
	ErrSlotTaken = errors.New("booking.repository: slot already taken by an active booking")

	// ErrStatusConflict возвращается, когда статус бронирования изменился
	// между чтением и обновлением (CAS по текущему статусу не прошёл)
	ErrStatusConflict = errors.New("booking.repository: booking status changed concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
