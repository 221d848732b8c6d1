package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/storage"
)

func newToken(userID uuid.UUID, expiresAt time.Time) *models.RefreshToken {
	id := uuid.New()
	return &models.RefreshToken{
		ID:        id,
		UserID:    userID,
		Token:     "signed-" + id.String(),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
}

func TestIntegration_SaveRefreshToken_And_GetByID_WithUser(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	u := seedUser(t, st, "guardian@example.com", "", models.RoleGuardian)
	rt := newToken(u.ID, time.Now().UTC().Add(time.Hour))

	require.NoError(t, st.SaveRefreshToken(ctx, rt))

	got, err := st.RefreshTokenByID(ctx, rt.ID)
	require.NoError(t, err)
	require.Equal(t, rt.ID, got.ID)
	require.Equal(t, u.ID, got.UserID)
	require.Equal(t, rt.Token, got.Token)
	require.WithinDuration(t, rt.ExpiresAt, got.ExpiresAt, time.Second)
	require.NotNil(t, got.User)
	require.Equal(t, u.ID, got.User.ID)
	require.Equal(t, models.RoleGuardian, got.User.Role)
}

func TestIntegration_SaveRefreshToken_UnknownUser(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	err := st.SaveRefreshToken(context.Background(), newToken(uuid.New(), time.Now().Add(time.Hour)))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_RefreshTokenByID_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.RefreshTokenByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_RotateRefreshToken_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	u := seedUser(t, st, "t@example.com", "", models.RoleTeacher)
	old := newToken(u.ID, time.Now().UTC().Add(time.Hour))
	require.NoError(t, st.SaveRefreshToken(ctx, old))

	next := newToken(u.ID, time.Now().UTC().Add(2*time.Hour))
	require.NoError(t, st.RotateRefreshToken(ctx, old.ID, next))

	_, err := st.RefreshTokenByID(ctx, old.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.RefreshTokenByID(ctx, next.ID)
	require.NoError(t, err)
}

func TestIntegration_RotateRefreshToken_MissingOld_DoesNotInsert(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	u := seedUser(t, st, "t@example.com", "", models.RoleTeacher)
	next := newToken(u.ID, time.Now().UTC().Add(time.Hour))

	err := st.RotateRefreshToken(ctx, uuid.New(), next)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.RefreshTokenByID(ctx, next.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_RotateRefreshToken_ConcurrentOnlyOneWins(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	u := seedUser(t, st, "race@example.com", "", models.RoleSupervisor)
	old := newToken(u.ID, time.Now().UTC().Add(time.Hour))
	require.NoError(t, st.SaveRefreshToken(ctx, old))

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- st.RotateRefreshToken(ctx, old.ID, newToken(u.ID, time.Now().UTC().Add(time.Hour)))
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		require.ErrorIs(t, err, storage.ErrNotFound)
	}
	require.Equal(t, 1, wins)

	count, err := st.DeleteUserRefreshTokens(ctx, u.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestIntegration_DeleteRefreshToken_Idempotent(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	u := seedUser(t, st, "t@example.com", "", models.RoleTeacher)
	rt := newToken(u.ID, time.Now().UTC().Add(time.Hour))
	require.NoError(t, st.SaveRefreshToken(ctx, rt))

	deleted, err := st.DeleteRefreshToken(ctx, rt.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = st.DeleteRefreshToken(ctx, rt.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestIntegration_DeleteUserRefreshTokens_OnlyOwner(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	a := seedUser(t, st, "a@example.com", "", models.RoleTeacher)
	b := seedUser(t, st, "b@example.com", "", models.RoleTeacher)

	exp := time.Now().UTC().Add(time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, st.SaveRefreshToken(ctx, newToken(a.ID, exp)))
	}
	other := newToken(b.ID, exp)
	require.NoError(t, st.SaveRefreshToken(ctx, other))

	n, err := st.DeleteUserRefreshTokens(ctx, a.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	n, err = st.DeleteUserRefreshTokens(ctx, a.ID)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = st.RefreshTokenByID(ctx, other.ID)
	require.NoError(t, err)
}

func TestIntegration_DeleteExpiredTokens_DeletesOnlyExpired(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx := context.Background()
	u := seedUser(t, st, "t@example.com", "", models.RoleTeacher)
	now := time.Now().UTC()

	past := newToken(u.ID, now.Add(-time.Minute))
	atNow := newToken(u.ID, now)
	future := newToken(u.ID, now.Add(30*time.Minute))
	for _, rt := range []*models.RefreshToken{past, atNow, future} {
		require.NoError(t, st.SaveRefreshToken(ctx, rt))
	}

	n, err := st.DeleteExpiredTokens(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	_, err = st.RefreshTokenByID(ctx, past.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = st.RefreshTokenByID(ctx, atNow.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = st.RefreshTokenByID(ctx, future.ID)
	require.NoError(t, err)
}
