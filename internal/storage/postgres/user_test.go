package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/storage"
)

func TestIntegration_SaveUser_And_Lookup_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	u := seedUser(t, st, "Teacher@Example.com", "+963944567890", models.RoleTeacher)

	// CITEXT: поиск по email регистронезависим.
	byEmail, err := st.UserByEmailOrPhone(ctx, "teacher@example.com", "")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
	require.Equal(t, models.RoleTeacher, byEmail.Role)
	require.True(t, byEmail.IsActive)
	require.Equal(t, "hash", byEmail.PasswordHash)

	byPhone, err := st.UserByEmailOrPhone(ctx, "", "+963944567890")
	require.NoError(t, err)
	require.Equal(t, u.ID, byPhone.ID)

	byID, err := st.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, byID.ID)
	require.NotNil(t, byID.Email)
	require.NotNil(t, byID.Phone)
	require.WithinDuration(t, u.CreatedAt, byID.CreatedAt, time.Second)
}

func TestIntegration_UserByEmailOrPhone_EmptyArgumentsDoNotMatchNullColumns(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	seedUser(t, st, "", "+963944000001", models.RoleGuardian)

	// Пустой email не должен совпасть с NULL у пользователя без почты.
	_, err := st.UserByEmailOrPhone(ctx, "nobody@example.com", "")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_SaveUser_UniqueEmail_Violation(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	seedUser(t, st, "user@example.com", "", models.RoleAdmin)

	now := time.Now().UTC()
	email := "USER@EXAMPLE.COM"
	err := st.SaveUser(context.Background(), &models.User{
		ID:           uuid.New(),
		Email:        &email,
		PasswordHash: "h2",
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestIntegration_UserByID_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.UserByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_UserQueries_ContextCanceled(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.UserByEmailOrPhone(ctx, "user@example.com", "")
	require.ErrorIs(t, err, context.Canceled)

	_, err = st.UserByID(ctx, uuid.New())
	require.ErrorIs(t, err, context.Canceled)
}
