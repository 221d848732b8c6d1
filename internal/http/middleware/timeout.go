package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pribylovaa/school-admin/internal/http/response"
)

// Timeout ограничивает время обработки запроса. Если deadline истёк,
// а обработчик ничего не записал, клиент получает 504 "Request timeout".
// Уже заданный deadline не перезаписывается; d <= 0 отключает мидлвар.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if _, ok := ctx.Deadline(); !ok {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			if sw.status == 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				response.WriteError(sw, r, context.DeadlineExceeded)
			}
		})
	}
}
