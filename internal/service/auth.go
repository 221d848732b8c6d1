package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pribylovaa/school-admin/internal/metrics"
	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/pkg/log"
	"github.com/pribylovaa/school-admin/internal/pkg/redact"
	"github.com/pribylovaa/school-admin/internal/storage"
)

// LoginInput — учётные данные для входа. Должен быть указан ровно один из Email/Phone.
type LoginInput struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// Login выполняет вход по email или телефону и паролю.
// Отключённая учётная запись отклоняется до проверки пароля.
func (s *Service) Login(ctx context.Context, in LoginInput) (*models.AuthResult, error) {
	const op = "service.auth.Login"

	id, err := parseLoginIdentifier(in.Email, in.Phone, s.cfg.PhoneRegion)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.Password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentialsFormat)
	}

	user, err := s.storage.UserByEmailOrPhone(ctx, id.Email, id.Phone)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			burnPassword(in.Password)
			s.loginFailed(ctx, id, "user_not_found")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive {
		s.loginFailed(ctx, id, "account_deactivated")
		return nil, fmt.Errorf("%s: %w", op, ErrAccountDeactivated)
	}

	if !VerifyPassword(in.Password, user.PasswordHash) {
		s.loginFailed(ctx, id, "wrong_password")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.generateTokens(ctx, user, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.authEvent(ctx, "login", user.ID,
		slog.String("login_method", id.method()),
		slog.String("role", user.Role.String()),
	)

	return &models.AuthResult{TokenPair: *pair, User: user.View()}, nil
}

// RefreshToken обменивает действующий refresh-токен на новую пару.
// Старая запись удаляется атомарно с сохранением новой; из двух
// параллельных обменов одного токена успешен только один.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthResult, error) {
	const op = "service.auth.RefreshToken"

	record, err := s.loadRefreshRecord(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := record.User
	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w", op, ErrUserInactive)
	}

	pair, err := s.generateTokens(ctx, user, record.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.authEvent(ctx, "refresh", user.ID)

	return &models.AuthResult{TokenPair: *pair, User: user.View()}, nil
}

// revokeResult — исход отзыва refresh-токена. Reason != nil означает,
// что токен не был отозван, и объясняет почему.
type revokeResult struct {
	Revoked bool
	UserID  uuid.UUID
	Reason  error
}

// revoke пытается удалить запись, на которую указывает refresh-токен.
func (s *Service) revoke(ctx context.Context, refreshToken string) revokeResult {
	userID, tokenID, err := s.verifyRefreshToken(refreshToken)
	if err != nil {
		return revokeResult{Reason: err}
	}

	deleted, err := s.storage.DeleteRefreshToken(ctx, tokenID)
	if err != nil {
		return revokeResult{UserID: userID, Reason: err}
	}

	if !deleted {
		return revokeResult{UserID: userID, Reason: ErrInvalidRefreshToken}
	}

	return revokeResult{Revoked: true, UserID: userID}
}

// Logout отзывает сессию по refresh-токену. Операция всегда успешна для
// вызывающего: любой сбой фиксируется одним предупреждением в логе.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	res := s.revoke(ctx, refreshToken)
	if res.Reason != nil {
		log.From(ctx).Warn("logout_token_invalid",
			slog.String("token", redact.Token()),
			slog.String("reason", res.Reason.Error()),
		)
		return
	}

	s.authEvent(ctx, "logout", res.UserID)
}

// LogoutAll удаляет все сессии пользователя и возвращает их число.
func (s *Service) LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	const op = "service.auth.LogoutAll"

	n, err := s.storage.DeleteUserRefreshTokens(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.authEvent(ctx, "logout_all", userID, slog.Int64("tokens_deleted", n))

	return n, nil
}

// authEvent пишет событие аудита и учитывает его в метриках.
func (s *Service) authEvent(ctx context.Context, event string, userID uuid.UUID, attrs ...slog.Attr) {
	metrics.AuthEvent(event)

	all := append([]slog.Attr{
		slog.String("event", event),
		slog.String("user_id", userID.String()),
	}, attrs...)
	log.From(ctx).LogAttrs(ctx, slog.LevelInfo, "auth_event", all...)
}

func (s *Service) loginFailed(ctx context.Context, id loginIdentifier, reason string) {
	metrics.AuthEvent("login_failed")

	subject := redact.Email(id.Email)
	if id.Phone != "" {
		subject = redact.Phone(id.Phone)
	}

	log.From(ctx).Info("login_failed",
		slog.String("login_method", id.method()),
		slog.String("subject", subject),
		slog.String("reason", reason),
	)
}
