package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/storage"
)

const insertRefreshToken = `
	INSERT INTO refresh_tokens(id, user_id, token, expires_at, created_at)
	VALUES ($1, $2, $3, $4, $5)
`

// SaveRefreshToken сохраняет новый refresh-токен в БД.
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	const op = "storage.postgres.SaveRefreshToken"

	_, err := s.db.Exec(ctx, insertRefreshToken,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapInsertErr(err))
	}

	return nil
}

// RefreshTokenByID находит refresh-токен по ID вместе с владельцем.
func (s *Storage) RefreshTokenByID(ctx context.Context, id uuid.UUID) (*models.RefreshToken, error) {
	const op = "storage.postgres.RefreshTokenByID"

	query := `
		SELECT rt.id, rt.user_id, rt.token, rt.expires_at, rt.created_at,
		       u.id, u.name, u.email, u.phone, u.password_hash, u.role,
		       u.is_active, u.is_verified, u.created_at, u.updated_at
		FROM refresh_tokens rt
		JOIN users u ON u.id = rt.user_id
		WHERE rt.id = $1
	`

	var (
		token models.RefreshToken
		user  models.User
		role  string
	)

	err := s.db.QueryRow(ctx, query, id).Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.ExpiresAt,
		&token.CreatedAt,
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&role,
		&user.IsActive,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user.Role = models.Role(role)
	token.User = &user

	return &token, nil
}

// RotateRefreshToken в одной транзакции удаляет старую запись и сохраняет новую.
// Удаление должно затронуть ровно одну строку: иначе запись уже была
// использована другим запросом, и ротация отклоняется с ErrNotFound.
func (s *Storage) RotateRefreshToken(ctx context.Context, oldID uuid.UUID, next *models.RefreshToken) error {
	const op = "storage.postgres.RotateRefreshToken"

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmdTag, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, oldID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	_, err = tx.Exec(ctx, insertRefreshToken,
		next.ID,
		next.UserID,
		next.Token,
		next.ExpiresAt,
		next.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapInsertErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteRefreshToken удаляет запись по ID.
// Возвращает (true, nil), если запись была удалена, и (false, nil), если её не было.
func (s *Storage) DeleteRefreshToken(ctx context.Context, id uuid.UUID) (bool, error) {
	const op = "storage.postgres.DeleteRefreshToken"

	cmdTag, err := s.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

// DeleteUserRefreshTokens удаляет все сессии пользователя.
func (s *Storage) DeleteUserRefreshTokens(ctx context.Context, userID uuid.UUID) (int64, error) {
	const op = "storage.postgres.DeleteUserRefreshTokens"

	cmdTag, err := s.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return cmdTag.RowsAffected(), nil
}

// DeleteExpiredTokens удаляет все просроченные токены.
func (s *Storage) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.postgres.DeleteExpiredTokens"

	query := `
		DELETE FROM refresh_tokens
		WHERE expires_at <= $1
	`

	cmdTag, err := s.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return cmdTag.RowsAffected(), nil
}

func mapInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return storage.ErrAlreadyExists
		case pgerrcode.ForeignKeyViolation:
			return storage.ErrNotFound
		}
	}

	return err
}
