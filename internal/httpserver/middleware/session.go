package middleware

import (
	"context"
	"net/http"

	"github.com/wassimtechnew/Techsatwassim/internal/session"
)

type sessionContextKey string

const sessionKey sessionContextKey = "session.data"

// LoadSession decodes the session cookie once per request and stores the
// result in the context. Requests without a valid cookie carry a fresh
// anonymous session.
func LoadSession(mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data := mgr.Load(r)
			ctx := context.WithValue(r.Context(), sessionKey, data)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the request's session data. The zero value is
// an anonymous session.
func SessionFromContext(ctx context.Context) session.Data {
	if d, ok := ctx.Value(sessionKey).(session.Data); ok {
		return d
	}
	return session.Data{}
}

// RequireAuth gates the admin panel: unauthenticated requests are redirected
// to the login page. htmx requests get an HX-Redirect so the full page
// navigates instead of swapping a fragment.
func RequireAuth(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !SessionFromContext(r.Context()).Authenticated {
				if IsHTMXRequest(r.Context()) {
					w.Header().Set("HX-Redirect", loginPath)
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore disables caching on authenticated pages.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
