// expires разбирает строки сроков жизни токенов вида "30d", "15m", "12h", "45s".
package expires

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidFormat — строка не соответствует формату <число><d|h|m|s>.
var ErrInvalidFormat = errors.New("invalid expiration format")

var pattern = regexp.MustCompile(`^(\d+)([dhms])$`)

var units = map[string]time.Duration{
	"d": 24 * time.Hour,
	"h": time.Hour,
	"m": time.Minute,
	"s": time.Second,
}

// Parse переводит строку срока в time.Duration.
// Пробелы, дробные и отрицательные значения, а также пустая строка
// считаются ошибкой формата.
func Parse(raw string) (time.Duration, error) {
	const op = "expires.Parse"

	m := pattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, fmt.Errorf("%s: %q: %w", op, raw, ErrInvalidFormat)
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q: %w", op, raw, ErrInvalidFormat)
	}

	unit := units[m[2]]
	if n > int64(maxDuration/unit) {
		return 0, fmt.Errorf("%s: %q: %w", op, raw, ErrInvalidFormat)
	}

	return time.Duration(n) * unit, nil
}

const maxDuration = time.Duration(1<<63 - 1)
