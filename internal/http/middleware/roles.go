package middleware

import (
	"net/http"

	"github.com/pribylovaa/school-admin/internal/http/response"
	"github.com/pribylovaa/school-admin/internal/models"
	"github.com/pribylovaa/school-admin/internal/service"
)

// RequireRoles пропускает запрос, только если роль субъекта входит в набор.
// Пустой набор пропускает любого аутентифицированного субъекта.
func RequireRoles(roles ...models.Role) Middleware {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				response.WriteError(w, r, service.ErrNotAuthenticated)
				return
			}

			if len(allowed) > 0 {
				if _, ok := allowed[id.Role]; !ok {
					response.WriteError(w, r, service.ErrAccessDenied)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
