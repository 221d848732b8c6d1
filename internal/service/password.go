package service

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost — стоимость bcrypt для новых паролей.
const BcryptCost = 12

// HashPassword хэширует пароль с помощью bcrypt.
func HashPassword(password string) (string, error) {
	const op = "service.password.HashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// VerifyPassword сравнивает пароль с хэшем. Повреждённый хэш даёт false.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash — хэш случайного пароля со стоимостью BcryptCost. Сверка с ним
// уравнивает время ответа для неизвестного пользователя и неверного пароля.
var dummyHash = sync.OnceValue(func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("school-admin-dummy-password"), BcryptCost)
	if err != nil {
		panic(fmt.Sprintf("service.password: dummy hash: %v", err))
	}
	return string(h)
})

// burnPassword выполняет полную сверку bcrypt, результат отбрасывается.
func burnPassword(password string) {
	_ = VerifyPassword(password, dummyHash())
}
