package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/school-admin/internal/service"
)

func TestToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"format", service.ErrInvalidCredentialsFormat, 400, "Exactly one of email or phone must be provided in a valid format"},
		{"bad body", ErrInvalidRequest, 400, "Invalid request body"},
		{"credentials", service.ErrInvalidCredentials, 401, "Invalid credentials"},
		{"deactivated", service.ErrAccountDeactivated, 401, "Account is deactivated"},
		{"refresh", service.ErrInvalidRefreshToken, 401, "Invalid or expired refresh token"},
		{"inactive", service.ErrUserInactive, 401, "User is inactive"},
		{"gone", service.ErrUserNotFoundOrInactive, 401, "User not found or inactive"},
		{"bad token", service.ErrInvalidToken, 401, "Unauthorized"},
		{"expired", service.ErrTokenExpired, 401, "Unauthorized"},
		{"missing", service.ErrMissingToken, 401, "Unauthorized"},
		{"no identity", service.ErrNotAuthenticated, 403, "User not authenticated"},
		{"denied", service.ErrAccessDenied, 403, "Access denied."},
		{"limited", ErrRateLimited, 429, "Too many requests"},
		{"deadline", context.DeadlineExceeded, 504, "Request timeout"},
		{"unknown", errors.New("boom"), 500, "Internal server error"},
		{"nil", nil, 500, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := ToHTTP(tt.err)
			require.Equal(t, tt.status, status)
			require.Equal(t, tt.msg, msg)
		})
	}
}

func TestToHTTP_WrappedRefreshErrorWinsOverTokenError(t *testing.T) {
	err := fmt.Errorf("op: %w: %w", service.ErrInvalidRefreshToken, service.ErrTokenExpired)

	status, msg := ToHTTP(err)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid or expired refresh token", msg)
}

func TestWriteError_Envelope(t *testing.T) {
	now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)

	WriteError(rr, req, fmt.Errorf("wrapped: %w", service.ErrInvalidCredentials))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var env map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, false, env["success"])
	require.Equal(t, "Invalid credentials", env["message"])
	require.Equal(t, "Unauthorized", env["error"])
	require.EqualValues(t, 401, env["statusCode"])
	require.Equal(t, "2026-02-03T04:05:06Z", env["timestamp"])
	_, hasData := env["data"]
	require.False(t, hasData)
}

func TestWriteError_DoesNotLeakInternals(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	WriteError(rr, req, errors.New("pq: password authentication failed for user postgres"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "postgres")
}

func TestSuccess(t *testing.T) {
	rr := httptest.NewRecorder()

	Success(rr, http.StatusOK, "Login successful", map[string]string{"k": "v"})

	var env Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.True(t, env.Success)
	require.Equal(t, "Login successful", env.Message)
	require.Equal(t, http.StatusOK, env.StatusCode)
	require.Empty(t, env.Error)
	require.Equal(t, map[string]any{"k": "v"}, env.Data)
}

func TestNoContent(t *testing.T) {
	rr := httptest.NewRecorder()

	NoContent(rr)

	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Empty(t, rr.Body.Bytes())
}
