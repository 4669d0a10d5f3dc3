package middleware

import (
	"context"
	"net/http"
	"strings"

	"modelcatalog/internal/auth"
	"modelcatalog/internal/utils"
)

// ContextKey defines the type for context keys to avoid conflicts
type ContextKey string

// AdminClaimsKey is the context key for the validated admin claims
const AdminClaimsKey ContextKey = "adminClaims"

// AdminJWTMiddleware validates admin JWT tokens and enforces role-based access
func AdminJWTMiddleware(secret []byte, requiredRoles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString := strings.TrimPrefix(header, "Bearer ")
			if header == "" || tokenString == header {
				utils.RespondWithError(w, http.StatusUnauthorized, "Missing authentication token")
				return
			}

			claims, err := auth.ValidateAdminJWT(tokenString, secret)
			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			// Any one of the required roles is enough; admin satisfies viewer
			if len(requiredRoles) > 0 {
				allowed := false
				for _, required := range requiredRoles {
					if claims.HasPermission(required) {
						allowed = true
						break
					}
				}
				if !allowed {
					utils.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
					return
				}
			}

			ctx := context.WithValue(r.Context(), AdminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdminClaims retrieves the admin claims from the request context
func GetAdminClaims(ctx context.Context) (*auth.AdminClaims, bool) {
	claims, ok := ctx.Value(AdminClaimsKey).(*auth.AdminClaims)
	return claims, ok
}

// GetAdminSubject retrieves the token subject from the request context
func GetAdminSubject(ctx context.Context) (string, bool) {
	claims, ok := GetAdminClaims(ctx)
	if !ok {
		return "", false
	}
	return claims.Subject, true
}
