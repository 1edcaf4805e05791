package profileservice

// Teacher модель преподавателя из ProfileService
type Teacher struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Timezone    string `json:"timezone"` // IANA зона, например "Europe/Berlin"
}

// Student модель студента из ProfileService
type Student struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Timezone    string `json:"timezone"`
}

// ErrorResponse модель ошибки от ProfileService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
