package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ekazarov/TMS-BookingService/internal/api/handlers"
)

// userIDHeader заголовок с ID аутентифицированного пользователя.
// Аутентификацию выполняет внешний шлюз, сервис доверяет заголовку.
const userIDHeader = "X-User-ID"

type contextKey struct{}

var userIDKey contextKey

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// Auth извлекает ID пользователя из заголовка и кладет его в контекст запроса.
// Запросы без корректного заголовка отклоняются с 401.
func Auth(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(userIDHeader)
			if raw == "" {
				logger.Warn("Auth: missing %s header for %s %s", userIDHeader, r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, "отсутствует ID пользователя")
				return
			}

			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || userID <= 0 {
				logger.Warn("Auth: invalid %s header %q for %s %s", userIDHeader, raw, r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, "некорректный ID пользователя")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID возвращает ID пользователя из контекста запроса
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
