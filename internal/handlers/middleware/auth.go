package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/nkiryanov/library/internal/apperrors"
	"github.com/nkiryanov/library/internal/handlers/claimsctx"
	"github.com/nkiryanov/library/internal/handlers/render"
	"github.com/nkiryanov/library/internal/models"
	"github.com/nkiryanov/library/internal/service/authz"
)

type authService interface {
	ReadBearer(r *http.Request) (string, error)
	VerifyAccess(ctx context.Context, access string) (models.AccessClaims, error)
}

type AuthMiddleware struct {
	auth authService
}

func NewAuth(as authService) *AuthMiddleware {
	return &AuthMiddleware{auth: as}
}

// Verify bearer access token and put its claims to request context
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access, err := m.auth.ReadBearer(r)
		if err == nil {
			var claims models.AccessClaims
			claims, err = m.auth.VerifyAccess(r.Context(), access)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(claimsctx.New(r.Context(), claims)))
				return
			}
		}

		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
	})
}

// Require every listed role from claims already put to context
func Require(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := claimsctx.FromContext(r.Context())

			err := authz.Authorize(claims, roles...)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, apperrors.ErrUnauthenticated):
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			default:
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
			}
		})
	}
}
