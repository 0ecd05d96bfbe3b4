package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const htmxContextKey contextKey = "htmx.request"

// HTMX flags requests initiated by htmx so handlers and later middleware
// can branch on it.
func HTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isHTMX := strings.EqualFold(r.Header.Get("HX-Request"), "true")
			ctx := context.WithValue(r.Context(), htmxContextKey, isHTMX)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsHTMXRequest reports whether the current request was initiated by htmx.
func IsHTMXRequest(ctx context.Context) bool {
	v, _ := ctx.Value(htmxContextKey).(bool)
	return v
}

// RequireHTMX ensures the request originated from htmx; otherwise returns 404
// to avoid exposing fragment routes to direct navigation.
func RequireHTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsHTMXRequest(r.Context()) {
				http.NotFound(w, r)
				return
			}
			w.Header().Add("Vary", "HX-Request")
			next.ServeHTTP(w, r)
		})
	}
}
