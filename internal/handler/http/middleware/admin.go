package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type adminKey struct{}

// AdminOnly admits tokens carrying the admin role and stores the admin's email
// on the request context.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != jwt.RoleAdmin {
			response.HandleError(w, auth.ErrAdminPrivilegeRequired)
			return
		}

		email, _ := claims["email"].(string)
		ctx := context.WithValue(r.Context(), adminKey{}, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminEmail returns the email of the admin authenticated by AdminOnly, or "".
func AdminEmail(ctx context.Context) string {
	email, _ := ctx.Value(adminKey{}).(string)
	return email
}
