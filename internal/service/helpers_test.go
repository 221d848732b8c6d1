package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/school-admin/internal/config"
	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/pkg/log"
	"github.com/pribylovaa/school-admin/mocks"
)

func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:           "unit-test-access-secret",
		JWTExpiresIn:        "15m",
		JWTRefreshSecret:    "unit-test-refresh-secret",
		JWTRefreshExpiresIn: "30d",
		Issuer:              "school-admin",
		Audience:            []string{"school-admin-api"},
		PhoneRegion:         "SY",
	}
}

func newSvc(t *testing.T) (*Service, *mocks.MockStorage) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	return New(st, testAuthCfg(), nil), st
}

// mustHash использует минимальную стоимость bcrypt, чтобы тесты не тормозили.
func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func strPtr(s string) *string { return &s }

func activeUser(t *testing.T, role models.Role, password string) *models.User {
	t.Helper()
	now := time.Now().UTC()
	return &models.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        strPtr("user@example.com"),
		PasswordHash: mustHash(t, password),
		Role:         role,
		IsActive:     true,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// logRecord — снимок записи лога.
type logRecord struct {
	level slog.Level
	msg   string
	attrs map[string]any
}

// capHandler собирает все записи лога для проверок в тестах.
type capHandler struct {
	mu      *sync.Mutex
	base    []slog.Attr
	records *[]logRecord
}

func newCapLogger() (*slog.Logger, *capHandler) {
	h := &capHandler{mu: &sync.Mutex{}, records: &[]logRecord{}}
	return slog.New(h), h
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.base)+r.NumAttrs())
	for _, a := range h.base {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	*h.records = append(*h.records, logRecord{level: r.Level, msg: r.Message, attrs: attrs})
	h.mu.Unlock()
	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &capHandler{mu: h.mu, base: append(append([]slog.Attr{}, h.base...), attrs...), records: h.records}
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

// byLevel возвращает записи указанного уровня.
func (h *capHandler) byLevel(lvl slog.Level) []logRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []logRecord
	for _, r := range *h.records {
		if r.level == lvl {
			out = append(out, r)
		}
	}
	return out
}

// byMsg возвращает записи с указанным сообщением.
func (h *capHandler) byMsg(msg string) []logRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []logRecord
	for _, r := range *h.records {
		if r.msg == msg {
			out = append(out, r)
		}
	}
	return out
}

func ctxWithCapture() (context.Context, *capHandler) {
	l, h := newCapLogger()
	return log.Into(context.Background(), l), h
}
