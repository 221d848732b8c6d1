// storage задаёт контракт хранилища пользователей и refresh-токенов.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/school-admin/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/токен).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/phone/id).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт нового пользователя.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmailOrPhone находит пользователя по email или нормализованному телефону.
	// Пустой аргумент в поиске не участвует.
	UserByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RefreshTokenStorage выполняет операции над refresh-токенами.
type RefreshTokenStorage interface {
	// SaveRefreshToken сохраняет полностью заполненную запись токена.
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	// RefreshTokenByID находит запись по ID вместе с владельцем (token.User).
	RefreshTokenByID(ctx context.Context, id uuid.UUID) (*models.RefreshToken, error)
	// RotateRefreshToken атомарно удаляет запись oldID и сохраняет next.
	// Если oldID уже удалена (параллельная ротация/logout), возвращает ErrNotFound
	// и ничего не сохраняет.
	RotateRefreshToken(ctx context.Context, oldID uuid.UUID, next *models.RefreshToken) error
	// DeleteRefreshToken удаляет запись по ID. Отсутствие записи не ошибка: (false, nil).
	DeleteRefreshToken(ctx context.Context, id uuid.UUID) (bool, error)
	// DeleteUserRefreshTokens удаляет все записи пользователя и возвращает их число.
	DeleteUserRefreshTokens(ctx context.Context, userID uuid.UUID) (int64, error)
	// DeleteExpiredTokens удаляет записи с expires_at <= now и возвращает их число.
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	UserStorage
	RefreshTokenStorage
	Close()
}
