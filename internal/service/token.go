package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/pkg/log"
	"github.com/pribylovaa/school-admin/internal/storage"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// accessClaims — полезная нагрузка access-токена: {sub, role}.
type accessClaims struct {
	Role models.Role `json:"role"`
	Type string      `json:"type"`
	jwt.RegisteredClaims
}

// refreshClaims — полезная нагрузка refresh-токена: {sub, tokenId}.
type refreshClaims struct {
	TokenID string `json:"tokenId"`
	Type    string `json:"type"`
	jwt.RegisteredClaims
}

func (s *Service) registered(subject uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject.String(),
		Issuer:    s.cfg.Issuer,
		Audience:  jwt.ClaimStrings(s.cfg.Audience),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// signAccessToken подписывает access-токен секретом доступа.
func (s *Service) signAccessToken(user *models.User, now time.Time) (string, error) {
	const op = "service.token.signAccessToken"

	claims := accessClaims{
		Role:             user.Role,
		Type:             tokenTypeAccess,
		RegisteredClaims: s.registered(user.ID, now, s.accessTTL),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// signRefreshToken подписывает refresh-токен отдельным секретом.
func (s *Service) signRefreshToken(userID, tokenID uuid.UUID, now time.Time) (string, error) {
	const op = "service.token.signRefreshToken"

	claims := refreshClaims{
		TokenID:          tokenID.String(),
		Type:             tokenTypeRefresh,
		RegisteredClaims: s.registered(userID, now, s.refreshTTL),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTRefreshSecret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

func (s *Service) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5 * time.Second),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if len(s.cfg.Audience) > 0 {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience...))
	}

	return opts
}

// verifyAccessToken проверяет подпись, срок и claims access-токена.
func (s *Service) verifyAccessToken(raw string) (*accessClaims, uuid.UUID, error) {
	const op = "service.token.verifyAccessToken"

	claims := &accessClaims{}
	if err := s.parse(raw, claims, s.cfg.JWTSecret); err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if claims.Type != tokenTypeAccess {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims, uid, nil
}

// verifyRefreshToken проверяет refresh-токен и возвращает (userID, tokenID).
func (s *Service) verifyRefreshToken(raw string) (uuid.UUID, uuid.UUID, error) {
	const op = "service.token.verifyRefreshToken"

	claims := &refreshClaims{}
	if err := s.parse(raw, claims, s.cfg.JWTRefreshSecret); err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if claims.Type != tokenTypeRefresh {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	tid, err := uuid.Parse(claims.TokenID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return uid, tid, nil
}

func (s *Service) parse(raw string, claims jwt.Claims, secret string) error {
	if raw == "" {
		return ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, ErrInvalidToken
			}

			return []byte(secret), nil
		},
		s.parserOptions()...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}

		return ErrInvalidToken
	}

	if !token.Valid {
		return ErrInvalidToken
	}

	return nil
}

// generateTokens подписывает новую пару и сохраняет запись refresh-токена.
// ID записи генерируется до подписи, поэтому запись вставляется один раз
// уже с готовым токеном. Если previous != uuid.Nil, старая запись удаляется
// в той же транзакции; если её уже нет, возвращается ErrInvalidRefreshToken.
func (s *Service) generateTokens(ctx context.Context, user *models.User, previous uuid.UUID) (*models.TokenPair, error) {
	const op = "service.token.generateTokens"

	lg := log.From(ctx)
	start := time.Now()
	now := s.now().UTC()
	tokenID := uuid.New()

	access, err := s.signAccessToken(user, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refresh, err := s.signRefreshToken(user.ID, tokenID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	record := &models.RefreshToken{
		ID:        tokenID,
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}

	if previous == uuid.Nil {
		err = s.storage.SaveRefreshToken(ctx, record)
	} else {
		err = s.storage.RotateRefreshToken(ctx, previous, record)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
		}
	}
	if err != nil {
		lg.Error("refresh_token_persist_failed",
			slog.String("op", op),
			slog.String("user_id", user.ID.String()),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Debug("token_pair_issued",
		slog.String("user_id", user.ID.String()),
		slog.Bool("rotated", previous != uuid.Nil),
		slog.Duration("dur", time.Since(start)),
	)

	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// loadRefreshRecord проверяет refresh-токен и загружает действующую запись вместе с владельцем.
func (s *Service) loadRefreshRecord(ctx context.Context, raw string) (*models.RefreshToken, error) {
	const op = "service.token.loadRefreshRecord"

	userID, tokenID, err := s.verifyRefreshToken(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidRefreshToken, err)
	}

	record, err := s.storage.RefreshTokenByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if record.Expired(s.now()) || record.UserID != userID || record.User == nil ||
		subtle.ConstantTimeCompare([]byte(record.Token), []byte(raw)) != 1 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}

	return record, nil
}
