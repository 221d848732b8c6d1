// response стандартизирует ответы HTTP-слоя.
// Любой ответ, успешный или нет, упаковывается в единый конверт:
//
//	{success, message, data?, error?, timestamp, statusCode}
//
// Ошибки сервисного слоя переводятся в статус и безопасное сообщение
// через ToHTTP; внутренние детали только логируются.
package response

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/school-admin/internal/pkg/log"
	"github.com/pribylovaa/school-admin/internal/service"
)

// Ошибки HTTP-слоя, которых нет в сервисе.
var (
	ErrInvalidRequest = errors.New("invalid request body")
	ErrRateLimited    = errors.New("rate limited")
	ErrNotFound       = errors.New("route not found")
)

// Envelope — корневой объект любого ответа.
type Envelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	Timestamp  string `json:"timestamp"`
	StatusCode int    `json:"statusCode"`
}

// now подменяется в тестах.
var now = time.Now

// mapping — таблица сопоставления ошибок со статусом и сообщением.
// Порядок важен: берётся первая подходящая запись.
var mapping = []struct {
	err    error
	status int
	msg    string
}{
	{service.ErrInvalidCredentialsFormat, http.StatusBadRequest, "Exactly one of email or phone must be provided in a valid format"},
	{service.ErrInvalidRole, http.StatusBadRequest, "Invalid role"},
	{service.ErrEmptyPassword, http.StatusBadRequest, "Password must not be empty"},
	{ErrInvalidRequest, http.StatusBadRequest, "Invalid request body"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{service.ErrAccountDeactivated, http.StatusUnauthorized, "Account is deactivated"},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized, "Invalid or expired refresh token"},
	{service.ErrUserInactive, http.StatusUnauthorized, "User is inactive"},
	{service.ErrUserNotFoundOrInactive, http.StatusUnauthorized, "User not found or inactive"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "Unauthorized"},
	{service.ErrTokenExpired, http.StatusUnauthorized, "Unauthorized"},
	{service.ErrMissingToken, http.StatusUnauthorized, "Unauthorized"},
	{service.ErrNotAuthenticated, http.StatusForbidden, "User not authenticated"},
	{service.ErrAccessDenied, http.StatusForbidden, "Access denied."},
	{ErrNotFound, http.StatusNotFound, "Not found"},
	{service.ErrUserExists, http.StatusConflict, "User already exists"},
	{ErrRateLimited, http.StatusTooManyRequests, "Too many requests"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "Request timeout"},
}

// ToHTTP переводит ошибку в HTTP-статус и безопасное сообщение.
// nil и неизвестные ошибки дают 500, чтобы не маскировать баг.
func ToHTTP(err error) (int, string) {
	if err != nil {
		for _, m := range mapping {
			if errors.Is(err, m.err) {
				return m.status, m.msg
			}
		}
	}

	return http.StatusInternalServerError, "Internal server error"
}

// WriteError пишет конверт ошибки. Ошибки 5xx логируются с деталями.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := ToHTTP(err)

	if status >= http.StatusInternalServerError {
		lg := log.From(r.Context())
		errText := "<nil>"
		if err != nil {
			errText = err.Error()
		}
		lg.LogAttrs(r.Context(), slog.LevelError, "request_failed",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("err", errText),
		)
	}

	write(w, status, Envelope{
		Success: false,
		Message: msg,
		Error:   http.StatusText(status),
	})
}

// Success пишет успешный конверт с данными.
func Success(w http.ResponseWriter, status int, msg string, data any) {
	write(w, status, Envelope{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

// NoContent отвечает 204 без тела.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func write(w http.ResponseWriter, status int, env Envelope) {
	env.StatusCode = status
	env.Timestamp = now().UTC().Format(time.RFC3339Nano)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
