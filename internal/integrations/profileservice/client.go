package profileservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с ProfileService.
// ProfileService владеет учётными записями и настройками пользователей,
// в том числе часовым поясом преподавателя.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента ProfileService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetTeacher получает профиль преподавателя (включая его IANA зону)
func (c *Client) GetTeacher(ctx context.Context, teacherID int64) (*Teacher, error) {
	var teacher Teacher
	if err := c.get(ctx, fmt.Sprintf("%s/internal/teachers/%d", c.baseURL, teacherID), &teacher, ErrTeacherNotFound); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// GetStudent получает профиль студента
func (c *Client) GetStudent(ctx context.Context, studentID int64) (*Student, error) {
	var student Student
	if err := c.get(ctx, fmt.Sprintf("%s/internal/students/%d", c.baseURL, studentID), &student, ErrStudentNotFound); err != nil {
		return nil, err
	}
	return &student, nil
}

func (c *Client) get(ctx context.Context, url string, dst interface{}, notFound error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return notFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
