package middleware

import (
	"context"
	"net/http"

	"github.com/MedSupply-Manager/user-service/internal/model"
)

// AccessTokenCookie is the cookie the frontend sends back on every request.
const AccessTokenCookie = "accessToken"

type userResolver interface {
	VerifyAccess(ctx context.Context, accessToken string) (model.User, error)
}

type contextKey string

const authUserContextKey contextKey = "auth_user"

type AuthMiddleware struct {
	resolver userResolver
}

func NewAuthMiddleware(resolver userResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireAuth authenticates via the http-only access token cookie and loads
// the full user record into the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(AccessTokenCookie)
		if err != nil || cookie.Value == "" {
			writeAuthError(w, http.StatusUnauthorized, "No access token provided")
			return
		}

		user, err := m.resolver.VerifyAccess(r.Context(), cookie.Value)
		if err != nil {
			writeAuthError(w, statusFor(err), messageFor(err))
			return
		}

		ctx := context.WithValue(r.Context(), authUserContextKey, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates the admin surface through the role's capability check
// rather than comparing strings at every call site.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		if !user.Role.CanManageUsers() {
			writeAuthError(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(authUserContextKey).(*model.User)
	return user, ok
}
