package models

import "github.com/google/uuid"

// Identity — аутентифицированный субъект запроса, который стратегии
// кладут в контекст. RefreshTokenID заполняет только refresh-стратегия.
type Identity struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          *string    `json:"email"`
	Phone          *string    `json:"phone"`
	Role           Role       `json:"role"`
	IsActive       bool       `json:"isActive"`
	IsVerified     bool       `json:"isVerified"`
	RefreshTokenID *uuid.UUID `json:"refreshTokenId,omitempty"`
}

// IdentityOf строит Identity из учётной записи.
func IdentityOf(u *User) *Identity {
	return &Identity{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       u.Role,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
	}
}
