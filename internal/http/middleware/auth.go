package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pribylovaa/school-admin/internal/http/response"
	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/service"
)

// MaxRefreshBody ограничивает размер тела с refresh-токеном.
const MaxRefreshBody = 64 << 10

// Authenticator проверяет токены и возвращает субъект запроса.
type Authenticator interface {
	AuthenticateAccess(ctx context.Context, accessToken string) (*models.Identity, error)
	AuthenticateRefresh(ctx context.Context, refreshToken string) (*models.Identity, error)
}

type identityKey struct{}
type refreshTokenKey struct{}

// WithIdentity кладёт субъект в контекст.
func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom достаёт субъект из контекста.
func IdentityFrom(ctx context.Context) (*models.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*models.Identity)
	return id, ok && id != nil
}

// RefreshTokenFrom возвращает сырой refresh-токен, прочитанный refresh-стратегией.
func RefreshTokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(refreshTokenKey{}).(string)
	return tok
}

// BearerToken извлекает токен из заголовка Authorization.
// Схема сравнивается с учётом регистра: "bearer x" не принимается.
func BearerToken(r *http.Request) string {
	const prefix = "Bearer "

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}

	return strings.TrimSpace(auth[len(prefix):])
}

// AccessToken требует действующий access-токен в Authorization: Bearer.
func AccessToken(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				response.WriteError(w, r, service.ErrMissingToken)
				return
			}

			id, err := a.AuthenticateAccess(r.Context(), token)
			if err != nil {
				response.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// refreshBody — тело, из которого стратегии читают refresh-токен.
type refreshBody struct {
	RefreshToken string `json:"refreshToken"`
}

// readRefreshToken читает refreshToken из JSON-тела и восстанавливает тело
// для следующего обработчика.
func readRefreshToken(r *http.Request) (string, error) {
	if r.Body == nil {
		return "", nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, MaxRefreshBody))
	if err != nil {
		return "", err
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))

	if len(bytes.TrimSpace(raw)) == 0 {
		return "", nil
	}

	var body refreshBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", err
	}

	return strings.TrimSpace(body.RefreshToken), nil
}

// RefreshToken требует действующий refresh-токен в поле тела refreshToken.
// Субъект и сырой токен кладутся в контекст.
func RefreshToken(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := readRefreshToken(r)
			if err != nil {
				response.WriteError(w, r, response.ErrInvalidRequest)
				return
			}
			if token == "" {
				response.WriteError(w, r, service.ErrMissingToken)
				return
			}

			id, err := a.AuthenticateRefresh(r.Context(), token)
			if err != nil {
				response.WriteError(w, r, err)
				return
			}

			ctx := WithIdentity(r.Context(), id)
			ctx = context.WithValue(ctx, refreshTokenKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
