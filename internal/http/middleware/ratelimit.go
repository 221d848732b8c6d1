package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/pribylovaa/school-admin/internal/http/response"
	"github.com/pribylovaa/school-admin/internal/metrics"
	"github.com/pribylovaa/school-admin/internal/pkg/log"
	"github.com/pribylovaa/school-admin/internal/ratelimit"
)

// Limiter — контракт лимитера частоты.
type Limiter interface {
	Allow(ctx context.Context, key string) (*ratelimit.Result, error)
}

// RateLimit ограничивает частоту запросов с одного адреса клиента.
// При недоступности лимитера запрос пропускается с предупреждением в логе.
func RateLimit(l Limiter, scope string) Middleware {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := l.Allow(r.Context(), scope+":"+clientIP(r))
			if err != nil {
				log.From(r.Context()).Warn("rate_limit_unavailable",
					slog.String("scope", scope),
					slog.String("err", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

			if !res.Allowed {
				secs := int(math.Ceil(res.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))

				metrics.RateLimited(scope)
				response.WriteError(w, r, response.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP берёт адрес из RemoteAddr; X-Forwarded-For разбирает chi RealIP выше по цепочке.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
