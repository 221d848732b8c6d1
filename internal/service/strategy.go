package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/storage"
)

// AuthenticateAccess проверяет access-токен и загружает активного владельца.
func (s *Service) AuthenticateAccess(ctx context.Context, accessToken string) (*models.Identity, error) {
	const op = "service.strategy.AuthenticateAccess"

	_, userID, err := s.verifyAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFoundOrInactive)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFoundOrInactive)
	}

	return models.IdentityOf(user), nil
}

// AuthenticateRefresh проверяет refresh-токен по записи в хранилище
// и возвращает владельца вместе с ID записи.
func (s *Service) AuthenticateRefresh(ctx context.Context, refreshToken string) (*models.Identity, error) {
	const op = "service.strategy.AuthenticateRefresh"

	record, err := s.loadRefreshRecord(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !record.User.IsActive {
		return nil, fmt.Errorf("%s: %w", op, ErrUserInactive)
	}

	id := models.IdentityOf(record.User)
	tokenID := record.ID
	id.RefreshTokenID = &tokenID

	return id, nil
}
