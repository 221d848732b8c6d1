package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/service"
)

// AuthService — операции аутентификации, которые нужны хендлерам.
type AuthService interface {
	Login(ctx context.Context, in service.LoginInput) (*models.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.AuthResult, error)
	Logout(ctx context.Context, refreshToken string)
	LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Handlers агрегирует зависимости REST-эндпойнтов.
type Handlers struct {
	Auth AuthService
}

func New(auth AuthService) *Handlers {
	return &Handlers{Auth: auth}
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}
