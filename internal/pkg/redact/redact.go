// redact маскирует персональные данные и секреты перед записью в лог.
package redact

import "strings"

// Email оставляет первые две руны локальной части и домен.
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := []rune(parts[0]), parts[1]
	if len(local) > 2 {
		return string(local[:2]) + "***@" + domain
	}

	return "***@" + domain
}

// Phone оставляет код страны (до 4 символов) и две последние цифры.
func Phone(s string) string {
	r := []rune(s)
	if len(r) < 7 {
		return "***"
	}

	return string(r[:4]) + "***" + string(r[len(r)-2:])
}

func Token() string    { return "[REDACTED_TOKEN]" }
func Password() string { return "[REDACTED_PASSWORD]" }
