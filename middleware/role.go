package middleware

import "net/http"

// RequireRole is Guard plus a role check. A caller whose role is not in
// roles gets 403.
func RequireRole(v Validator, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	guard := Guard(v)
	return func(next http.Handler) http.Handler {
		return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := PrincipalFromContext(r.Context())
			if _, ok := allowed[p.Role]; !ok {
				reject(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
