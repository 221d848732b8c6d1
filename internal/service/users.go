package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/pkg/log"
	"github.com/pribylovaa/school-admin/internal/storage"
)

// CreateUserInput — данные новой учётной записи. Нужен хотя бы один из Email/Phone.
type CreateUserInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     models.Role
}

// CreateUser создаёт активную учётную запись с bcrypt-хэшем пароля.
// Используется утилитой schoolctl для первичного заполнения.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*models.UserView, error) {
	const op = "service.users.CreateUser"

	if !in.Role.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRole)
	}

	if in.Password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	email, phone := strings.TrimSpace(in.Email), strings.TrimSpace(in.Phone)
	if email == "" && phone == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentialsFormat)
	}

	user := &models.User{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(in.Name),
		Role:     in.Role,
		IsActive: true,
	}

	if email != "" {
		norm, err := normalizeEmail(email)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.Email = &norm
	}

	if phone != "" {
		norm, err := normalizePhone(phone, s.cfg.PhoneRegion)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.Phone = &norm
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.PasswordHash = hash

	now := s.now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_created",
		slog.String("user_id", user.ID.String()),
		slog.String("role", user.Role.String()),
	)

	view := user.View()
	return &view, nil
}
