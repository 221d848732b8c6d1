package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/school-admin/internal/pkg/log"
)

// Logging кладёт в контекст request-scoped логгер с request_id
// и пишет одну запись на каждый запрос.
func Logging(l *slog.Logger) Middleware {
	if l == nil {
		l = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := l
			if rid := RequestIDFrom(r.Context()); rid != "" {
				reqLogger = reqLogger.With(slog.String("request_id", rid))
			}
			r = r.WithContext(log.Into(r.Context(), reqLogger))

			sw := newStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)

			lvl := slog.LevelInfo
			if sw.Status() >= http.StatusInternalServerError {
				lvl = slog.LevelError
			}

			reqLogger.LogAttrs(r.Context(), lvl, "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.Status()),
				slog.Duration("dur", time.Since(start)),
				slog.Int("bytes", sw.count),
			)
		})
	}
}
