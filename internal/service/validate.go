package service

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// loginIdentifier — нормализованный идентификатор входа; заполнено ровно одно поле.
type loginIdentifier struct {
	Email string
	Phone string
}

// method возвращает способ входа для журнала событий.
func (id loginIdentifier) method() string {
	if id.Email != "" {
		return "email"
	}

	return "phone"
}

// parseLoginIdentifier требует ровно один из email/phone в корректном формате.
func parseLoginIdentifier(email, phone, region string) (loginIdentifier, error) {
	const op = "service.validate.parseLoginIdentifier"

	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)

	switch {
	case email != "" && phone != "", email == "" && phone == "":
		return loginIdentifier{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentialsFormat)
	case email != "":
		norm, err := normalizeEmail(email)
		if err != nil {
			return loginIdentifier{}, fmt.Errorf("%s: %w", op, err)
		}
		return loginIdentifier{Email: norm}, nil
	default:
		norm, err := normalizePhone(phone, region)
		if err != nil {
			return loginIdentifier{}, fmt.Errorf("%s: %w", op, err)
		}
		return loginIdentifier{Phone: norm}, nil
	}
}

// normalizeEmail проверяет адрес без display name и приводит его к нижнему регистру.
func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw || addr.Name != "" {
		return "", ErrInvalidCredentialsFormat
	}

	return strings.ToLower(raw), nil
}

// normalizePhone разбирает номер относительно региона и возвращает его в E.164.
func normalizePhone(raw, region string) (string, error) {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidCredentialsFormat
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
