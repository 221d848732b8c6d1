package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pribylovaa/school-admin/internal/http/middleware"
	"github.com/pribylovaa/school-admin/internal/http/response"
	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/service"
)

// refreshRequest — тело /auth/refresh и /auth/logout.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeStrict(r, &in); err != nil {
		response.WriteError(w, r, response.ErrInvalidRequest)
		return
	}

	res, err := h.Auth.Login(r.Context(), in)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.Success(w, http.StatusOK, "Login successful", res)
}

// Refresh ожидает, что refresh-стратегия уже проверила токен и положила его в контекст.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	token := middleware.RefreshTokenFrom(r.Context())
	if token == "" {
		var in refreshRequest
		if err := decodeStrict(r, &in); err != nil {
			response.WriteError(w, r, response.ErrInvalidRequest)
			return
		}
		token = in.RefreshToken
	}

	res, err := h.Auth.RefreshToken(r.Context(), token)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.Success(w, http.StatusOK, "Token refreshed successfully", res)
}

// Logout всегда отвечает 204: сбои отзыва только логируются.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, middleware.MaxRefreshBody)).Decode(&in)

	h.Auth.Logout(r.Context(), in.RefreshToken)
	response.NoContent(w)
}

func (h *Handlers) LogoutAll(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.WriteError(w, r, service.ErrNotAuthenticated)
		return
	}

	if _, err := h.Auth.LogoutAll(r.Context(), id.ID); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.NoContent(w)
}

// meResponse — данные /auth/me.
type meResponse struct {
	User *models.Identity `json:"user"`
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.WriteError(w, r, service.ErrNotAuthenticated)
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", meResponse{User: id})
}
