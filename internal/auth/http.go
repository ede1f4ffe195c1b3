// ABOUTME: HTTP middleware resolving session tokens into request identity
// ABOUTME: Bearer header first, session cookie fallback; role gates on top

package auth

import (
	"net/http"
	"strings"
)

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the empty string if the header is missing or malformed.
func extractBearerToken(authHeader string) string {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// tokenFromRequest pulls the session token from the Authorization header,
// falling back to the session cookie. Identity is never derived from any
// other caller-supplied header.
func tokenFromRequest(r *http.Request) string {
	if token := extractBearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// ResolveMiddleware attempts to resolve the caller's identity from the
// request and attaches it to the context. Anonymous requests pass through
// with no identity; the 401 decision belongs to downstream gates.
func ResolveMiddleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := svc.Resolve(r.Context(), tokenFromRequest(r))
			if id == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireIdentity creates a middleware that rejects anonymous requests.
// Must be used after ResolveMiddleware.
func RequireIdentity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if FromContext(r.Context()) == nil {
				http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin creates a middleware that requires the admin role. This is a
// plain role check on the verified identity; it is intentionally not routed
// through the gatekeeper, which would create a circular dependency.
// Must be used after ResolveMiddleware.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := FromContext(r.Context())
			if id == nil {
				http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
				return
			}
			if !id.IsAdmin() {
				http.Error(w, `{"error":"administrator required"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
