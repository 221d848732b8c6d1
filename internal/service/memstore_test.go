package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/storage"
)

// memStorage — storage.Storage в памяти с той же семантикой, что и postgres:
// ротация атомарна, удаление отсутствующей записи не ошибка.
type memStorage struct {
	mu     sync.Mutex
	users  map[uuid.UUID]models.User
	tokens map[uuid.UUID]models.RefreshToken
}

var _ storage.Storage = (*memStorage)(nil)

func newMemStorage() *memStorage {
	return &memStorage{
		users:  map[uuid.UUID]models.User{},
		tokens: map[uuid.UUID]models.RefreshToken{},
	}
}

func (m *memStorage) SaveUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, have := range m.users {
		if have.ID == u.ID || sameStr(have.Email, u.Email) || sameStr(have.Phone, u.Phone) {
			return storage.ErrAlreadyExists
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memStorage) UserByEmailOrPhone(_ context.Context, email, phone string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if (email != "" && u.Email != nil && *u.Email == email) ||
			(phone != "" && u.Phone != nil && *u.Phone == phone) {
			cp := u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStorage) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (m *memStorage) SaveRefreshToken(_ context.Context, t *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tokens[t.ID]; ok {
		return storage.ErrAlreadyExists
	}
	m.tokens[t.ID] = *t
	return nil
}

func (m *memStorage) RefreshTokenByID(_ context.Context, id uuid.UUID) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tokens[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u, ok := m.users[t.UserID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	t.User = &u
	return &t, nil
}

func (m *memStorage) RotateRefreshToken(_ context.Context, oldID uuid.UUID, next *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tokens[oldID]; !ok {
		return storage.ErrNotFound
	}
	delete(m.tokens, oldID)
	m.tokens[next.ID] = *next
	return nil
}

func (m *memStorage) DeleteRefreshToken(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.tokens[id]
	delete(m.tokens, id)
	return ok, nil
}

func (m *memStorage) DeleteUserRefreshTokens(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}

func (m *memStorage) DeleteExpiredTokens(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, t := range m.tokens {
		if !t.ExpiresAt.After(now) {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}

func (m *memStorage) Close() {}

func (m *memStorage) tokenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

func sameStr(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}
