package middleware

import (
	"fmt"
	"net/http"

	"github.com/skilledlink/skilledlink-backend/api/responses"
	pkgerrors "github.com/skilledlink/skilledlink-backend/pkg/errors"
	"github.com/skilledlink/skilledlink-backend/pkg/logger"
)

// RequireRole gates a route group to callers whose token carries the given
// role. It must sit behind Auth, which seeds the role into the context.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := RoleFromContext(r.Context())
			if actor == role {
				next.ServeHTTP(w, r)
				return
			}
			err := pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s role required", role))
			responses.WriteError(r.Context(), logg, w, err)
		})
	}
}
