package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/storage"
)

func TestCreateUser_OK(t *testing.T) {
	svc, st := newSvc(t)

	var saved *models.User
	st.EXPECT().
		SaveUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		})

	view, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name:     "  Admin  ",
		Email:    "Admin@DarAlKaram.com",
		Phone:    "0944567890",
		Password: "s3cret",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	require.NotNil(t, saved)

	require.Equal(t, "Admin", view.Name)
	require.Equal(t, "admin@daralkaram.com", *saved.Email)
	require.Equal(t, "+963944567890", *saved.Phone)
	require.True(t, saved.IsActive)
	require.Equal(t, models.RoleAdmin, saved.Role)

	cost, err := bcrypt.Cost([]byte(saved.PasswordHash))
	require.NoError(t, err)
	require.Equal(t, BcryptCost, cost)
	require.True(t, VerifyPassword("s3cret", saved.PasswordHash))
}

func TestCreateUser_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   CreateUserInput
		want error
	}{
		{name: "bad role", in: CreateUserInput{Email: "a@b.com", Password: "x", Role: "ROOT"}, want: ErrInvalidRole},
		{name: "empty password", in: CreateUserInput{Email: "a@b.com", Role: models.RoleAdmin}, want: ErrEmptyPassword},
		{name: "no identifier", in: CreateUserInput{Password: "x", Role: models.RoleAdmin}, want: ErrInvalidCredentialsFormat},
		{name: "bad email", in: CreateUserInput{Email: "nope", Password: "x", Role: models.RoleAdmin}, want: ErrInvalidCredentialsFormat},
		{name: "bad phone", in: CreateUserInput{Phone: "1", Password: "x", Role: models.RoleAdmin}, want: ErrInvalidCredentialsFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newSvc(t)

			_, err := svc.CreateUser(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	svc, st := newSvc(t)

	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyExists)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email: "a@b.com", Password: "x", Role: models.RoleTeacher,
	})
	require.ErrorIs(t, err, ErrUserExists)
}
