package middleware

import (
	"context"
	"net/http"
	"strings"
)

type htmxContextKey string

const htmxRequestKey htmxContextKey = "htmx.request"

// HTMX annotates the context with whether the request came from htmx, so
// auth redirects can switch to HX-Redirect headers.
func HTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isHTMX := strings.EqualFold(r.Header.Get("HX-Request"), "true")
			ctx := context.WithValue(r.Context(), htmxRequestKey, isHTMX)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsHTMXRequest returns true when the current request was initiated by htmx.
func IsHTMXRequest(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	is, ok := ctx.Value(htmxRequestKey).(bool)
	return ok && is
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
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore disables client-side caching for authenticated pages.
func NoStore() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	}
}
