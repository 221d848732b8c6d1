package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pribylovaa/school-admin/internal/http/middleware"
	"github.com/pribylovaa/school-admin/internal/http/response"
	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/service"
)

// Демонстрационные эндпойнты ролевого доступа. Роли проверяет роутер.

type demoUser struct {
	ID   uuid.UUID   `json:"id"`
	Role models.Role `json:"role"`
}

type demoResponse struct {
	Message string   `json:"message"`
	User    demoUser `json:"user"`
}

// Demo возвращает хендлер, отвечающий фиксированным сообщением и субъектом запроса.
func Demo(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.IdentityFrom(r.Context())
		if !ok {
			response.WriteError(w, r, service.ErrNotAuthenticated)
			return
		}

		response.Success(w, http.StatusOK, message, demoResponse{
			Message: message,
			User:    demoUser{ID: id.ID, Role: id.Role},
		})
	}
}
