package availability

import "errors"

var (
	// ErrProfileNotFound возвращается, когда профиль доступности преподавателя не найден
	ErrProfileNotFound = errors.New("availability.repository: availability profile not found")

	// ErrProfileExists возвращается, когда профиль уже создан конкурентным запросом
	ErrProfileExists = errors.New("availability.repository: availability profile already exists")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("availability.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("availability.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("availability.repository: failed to scan row")
)
