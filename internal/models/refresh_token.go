package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken — запись сессии в хранилище.
// Token хранит подписанный refresh-JWT, который содержит ID записи в claim tokenId.
// User заполняется только при выборке вместе с владельцем.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	User      *User
}

// Expired сообщает, истёк ли срок записи на момент now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
