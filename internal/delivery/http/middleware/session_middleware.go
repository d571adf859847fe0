package middleware

import (
	"context"
	"net/http"

	"mollywear-backend/internal/domain"

	"github.com/google/uuid"
)

const sessionCookieName = "mw_session"

// SessionKeyContextKey carries the cart session key for the request.
const SessionKeyContextKey domain.ContextKey = "session_key"

// SessionMiddleware assigns a stable session key per browser via a
// cookie. Guests get a fresh key on first contact; the same key keeps
// addressing the same in-memory cart across requests.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ""
		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			key = cookie.Value
		}
		if key == "" {
			key = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    key,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   60 * 60 * 24 * 30,
			})
		}

		ctx := context.WithValue(r.Context(), SessionKeyContextKey, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionKey returns the session key set by SessionMiddleware.
func SessionKey(r *http.Request) string {
	if key, ok := r.Context().Value(SessionKeyContextKey).(string); ok {
		return key
	}
	return ""
}
