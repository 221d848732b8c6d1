package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUserView_ExcludesPasswordHash(t *testing.T) {
	email := "teacher@example.com"
	u := &User{
		ID:           uuid.New(),
		Name:         "Teacher",
		Email:        &email,
		PasswordHash: "$2a$12$secret",
		Role:         RoleTeacher,
		IsActive:     true,
	}

	b, err := json.Marshal(u.View())
	require.NoError(t, err)
	require.NotContains(t, string(b), "secret")
	require.NotContains(t, string(b), "password")
	require.Contains(t, string(b), `"role":"TEACHER"`)
	require.Contains(t, string(b), `"isActive":true`)
}

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles() {
		require.True(t, r.Valid(), r)
	}
	require.False(t, Role("PRINCIPAL").Valid())
	require.False(t, Role("admin").Valid())
}

func TestRefreshToken_Expired(t *testing.T) {
	now := time.Now()
	require.True(t, (&RefreshToken{ExpiresAt: now.Add(-time.Second)}).Expired(now))
	require.True(t, (&RefreshToken{ExpiresAt: now}).Expired(now))
	require.False(t, (&RefreshToken{ExpiresAt: now.Add(time.Minute)}).Expired(now))
}

func TestIdentityOf(t *testing.T) {
	u := &User{ID: uuid.New(), Role: RoleGuardian, IsActive: true}
	id := IdentityOf(u)
	require.Equal(t, u.ID, id.ID)
	require.Equal(t, RoleGuardian, id.Role)
	require.Nil(t, id.RefreshTokenID)
}
