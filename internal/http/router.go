package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pribylovaa/school-admin/internal/http/handlers"
	"github.com/pribylovaa/school-admin/internal/http/middleware"
	"github.com/pribylovaa/school-admin/internal/http/response"
	"github.com/pribylovaa/school-admin/internal/models"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.

	// LoginLimiter ограничивает частоту входа; nil отключает ограничение.
	LoginLimiter middleware.Limiter
}

// Service — всё, что роутеру нужно от сервисного слоя.
type Service interface {
	handlers.AuthService
	middleware.Authenticator
}

// route — декларация маршрута. Непубличные маршруты требуют access-токен,
// непустой roles дополнительно включает ролевой гард.
type route struct {
	method  string
	pattern string
	handler http.Handler
	public  bool
	roles   []models.Role
	guards  []middleware.Middleware
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),
		chimw.RealIP,
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	notFound := func(w http.ResponseWriter, r *http.Request) {
		response.WriteError(w, r, response.ErrNotFound)
	}
	root.NotFound(notFound)

	routes := routeTable(svc, handlers.New(svc), opts)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		sub.NotFound(notFound)
		registerRoutes(sub, svc, routes)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, svc, routes)
	return root
}

// routeTable — единая точка объявления всех REST-эндпойнтов.
func routeTable(svc Service, h *handlers.Handlers, opts Options) []route {
	var loginGuards []middleware.Middleware
	if opts.LoginLimiter != nil {
		loginGuards = append(loginGuards, middleware.RateLimit(opts.LoginLimiter, "login"))
	}

	return []route{
		// auth
		{method: http.MethodPost, pattern: "/auth/login", handler: http.HandlerFunc(h.Login), public: true, guards: loginGuards},
		{method: http.MethodPost, pattern: "/auth/refresh", handler: http.HandlerFunc(h.Refresh), public: true,
			guards: []middleware.Middleware{middleware.RefreshToken(svc)}},
		{method: http.MethodPost, pattern: "/auth/logout", handler: http.HandlerFunc(h.Logout), public: true},
		{method: http.MethodPost, pattern: "/auth/logout-all", handler: http.HandlerFunc(h.LogoutAll)},
		{method: http.MethodGet, pattern: "/auth/me", handler: http.HandlerFunc(h.Me)},

		// demo
		{method: http.MethodGet, pattern: "/demo/admin-only",
			handler: handlers.Demo("This endpoint is only accessible by ADMIN users"),
			roles:   []models.Role{models.RoleAdmin}},
		{method: http.MethodGet, pattern: "/demo/staff-only",
			handler: handlers.Demo("This endpoint is accessible by TEACHER and SUPERVISOR users"),
			roles:   []models.Role{models.RoleTeacher, models.RoleSupervisor}},
		{method: http.MethodGet, pattern: "/demo/authenticated",
			handler: handlers.Demo("This endpoint is accessible by all authenticated users")},
		{method: http.MethodGet, pattern: "/demo/guardian-only",
			handler: handlers.Demo("This endpoint is only accessible by GUARDIAN users"),
			roles:   []models.Role{models.RoleGuardian}},
		{method: http.MethodGet, pattern: "/demo/management-only",
			handler: handlers.Demo("This endpoint is accessible by ADMIN and SUPERVISOR users"),
			roles:   []models.Role{models.RoleAdmin, models.RoleSupervisor}},
	}
}

func registerRoutes(r chi.Router, svc Service, routes []route) {
	for _, rt := range routes {
		var mws []middleware.Middleware
		if !rt.public {
			mws = append(mws, middleware.AccessToken(svc))
		}
		if len(rt.roles) > 0 {
			mws = append(mws, middleware.RequireRoles(rt.roles...))
		}
		mws = append(mws, rt.guards...)

		r.Method(rt.method, rt.pattern, middleware.Chain(rt.handler, mws...))
	}
}
