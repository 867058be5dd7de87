package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Middleware provides HTTP authentication middleware.
// It validates the session cookie and enforces role allow-lists before any
// handler (and therefore any storage access) runs.
type Middleware struct {
	tokens         *TokenService
	cookieSettings CookieSettings
	logger         *zap.Logger
}

// NewMiddleware creates a new auth middleware with the given token service.
func NewMiddleware(tokens *TokenService, cookieSettings CookieSettings, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens:         tokens,
		cookieSettings: cookieSettings,
		logger:         logger,
	}
}

// RequireAuth validates the session token and sets claims in context for
// downstream handlers. Use this for endpoints any authenticated user may call.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireRole()(next)
}

// RequireRole validates the session token and requires the embedded role to
// be a member of the given allow-list. An empty allow-list admits any
// authenticated user. An invalid or expired token clears the session cookie
// so the client is forced to re-authenticate.
func (m *Middleware) RequireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				m.unauthorized(w, "Not authenticated")
				return
			}

			claims, err := m.tokens.Validate(cookie.Value)
			if err != nil {
				m.logger.Debug("Session token validation failed",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				ClearSessionCookie(w, m.cookieSettings)
				m.unauthorized(w, "Invalid token")
				return
			}

			if len(roles) > 0 && !roleAllowed(claims.Role, roles) {
				m.logger.Warn("Role not permitted for endpoint",
					zap.String("role", claims.Role),
					zap.String("path", r.URL.Path))
				m.forbidden(w, "Insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

func roleAllowed(role string, allowed []string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// forbidden returns a 403 response with JSON error body.
func (m *Middleware) forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
