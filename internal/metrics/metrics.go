// metrics объявляет Prometheus-метрики сервиса. Метрики регистрируются
// в реестре по умолчанию и отдаются обработчиком /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "school"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route pattern and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	authEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Authentication events by kind.",
	}, []string{"event"})

	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	}, []string{"route"})
)

// ObserveHTTP учитывает завершённый HTTP-запрос.
func ObserveHTTP(method, route string, status int, dur time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(dur.Seconds())
}

// AuthEvent учитывает событие аутентификации (login, login_failed, refresh, logout, logout_all).
func AuthEvent(event string) {
	authEvents.WithLabelValues(event).Inc()
}

// RateLimited учитывает запрос, отклонённый лимитером.
func RateLimited(route string) {
	rateLimited.WithLabelValues(route).Inc()
}
