// service содержит бизнес-логику аутентификации школьного бэкенда:
// вход по email/телефону и паролю, выпуск и ротацию пары JWT,
// отзыв сессий и проверку токенов для HTTP-стратегий.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для
//     конкурентного использования при потокобезопасном storage.Storage.
//   - Ошибки возвращаются как обёртки над переменными ниже и маппятся
//     HTTP-слоем в статус и сообщение (см. комментарии к переменным).
package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/pribylovaa/school-admin/internal/config"
	"github.com/pribylovaa/school-admin/internal/pkg/expires"
	"github.com/pribylovaa/school-admin/internal/storage"
)

var (
	// ErrInvalidCredentialsFormat — не указан ровно один из email/phone,
	// идентификатор некорректен или пароль пуст. HTTP 400.
	ErrInvalidCredentialsFormat = errors.New("invalid credentials format")

	// ErrInvalidCredentials — пользователь не найден или пароль неверен.
	// Сообщение одинаково для обоих случаев. HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDeactivated — учётная запись отключена. HTTP 401.
	ErrAccountDeactivated = errors.New("account is deactivated")

	// ErrInvalidRefreshToken — refresh-токен не прошёл проверку, записи нет
	// или она просрочена. HTTP 401.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

	// ErrUserInactive — владелец refresh-токена отключён. HTTP 401.
	ErrUserInactive = errors.New("user is inactive")

	// ErrUserNotFoundOrInactive — субъект access-токена не найден или отключён. HTTP 401.
	ErrUserNotFoundOrInactive = errors.New("user not found or inactive")

	// ErrInvalidToken — JWT некорректен по формату/подписи/claims. HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия JWT истёк. HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingToken — в запросе нет токена. HTTP 401.
	ErrMissingToken = errors.New("missing token")

	// ErrNotAuthenticated — ролевой гард вызван без аутентифицированного субъекта. HTTP 403.
	ErrNotAuthenticated = errors.New("user not authenticated")

	// ErrAccessDenied — роль субъекта не входит в допустимый набор. HTTP 403.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidRole — роль вне закрытого набора. HTTP 400.
	ErrInvalidRole = errors.New("invalid role")

	// ErrEmptyPassword — пароль пустой. HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrUserExists — email или телефон уже заняты. HTTP 409.
	ErrUserExists = errors.New("user already exists")
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 30 * 24 * time.Hour
)

// Service описывает бизнес-логику аутентификации.
type Service struct {
	storage    storage.Storage
	cfg        config.AuthConfig
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// New создаёт новый экземпляр Service. Сроки жизни токенов разбираются
// один раз; некорректные значения заменяются значениями по умолчанию
// с записью ошибки в lg (nil означает slog.Default()).
func New(storage storage.Storage, cfg config.AuthConfig, lg *slog.Logger) *Service {
	if lg == nil {
		lg = slog.Default()
	}

	return &Service{
		storage:    storage,
		cfg:        cfg,
		accessTTL:  ttlOrDefault(lg, "access_ttl_parse_failed", "jwt_expires_in", cfg.JWTExpiresIn, defaultAccessTTL),
		refreshTTL: ttlOrDefault(lg, "refresh_ttl_parse_failed", "jwt_refresh_expires_in", cfg.JWTRefreshExpiresIn, defaultRefreshTTL),
		now:        time.Now,
	}
}

// RefreshTTL возвращает действующий срок жизни refresh-токена.
func (s *Service) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// ttlOrDefault разбирает строку срока; при ошибке пишет Error и возвращает def.
func ttlOrDefault(lg *slog.Logger, event, name, raw string, def time.Duration) time.Duration {
	d, err := expires.Parse(raw)
	if err != nil {
		lg.Error(event,
			slog.String("setting", name),
			slog.String("value", raw),
			slog.Duration("fallback", def),
			slog.String("err", err.Error()),
		)
		return def
	}

	return d
}
