package httpx

import "net/http"

// RequireRole guards a route so only authenticated users holding one of the
// listed roles may pass. Must run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok {
				WriteError(w, r, http.StatusUnauthorized, "missing bearer token")
				return
			}

			if _, ok := allowed[role]; !ok {
				WriteError(w, r, http.StatusForbidden, "insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
