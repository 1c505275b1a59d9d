package middleware

import (
	"context"
	"net/http"

	"pawtrack.dev/tracker-admin/internal/admin/authctx"
	"pawtrack.dev/tracker-admin/internal/admin/session"
)

type authContextKey string

const requestAuthKey authContextKey = "admin.auth"

// GuardState is the authentication state computed for a request.
type GuardState int

const (
	// StateLoading: a login/logout submission for this session is still
	// pending; render a neutral placeholder and fetch nothing.
	StateLoading GuardState = iota
	// StateUnauthenticated: no token; redirect to the login view before any
	// protected content or data fetch executes.
	StateUnauthenticated
	// StateAuthenticated: a token is present; the guarded subtree renders
	// and protected fetches are permitted.
	StateAuthenticated
)

func (s GuardState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// ResolveState computes the guard state for a session. A pending submission
// wins over the stored token: the cookie it is about to commit may supersede
// what this request carried.
func ResolveState(sess *session.Session, flight *authctx.Flight) GuardState {
	if sess == nil {
		return StateUnauthenticated
	}
	if flight != nil && flight.InFlight(sess.ID()) {
		return StateLoading
	}
	if sess.Authenticated() {
		return StateAuthenticated
	}
	return StateUnauthenticated
}

const loadingPlaceholder = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><meta http-equiv="refresh" content="1"><title>Signing in…</title></head>
<body><main class="guard-loading"><p>One moment…</p></main></body>
</html>
`

// Guard enforces the authentication state machine around protected views.
// Authenticated requests proceed with the session's auth capability attached
// to the context; everything else short-circuits here.
func Guard(flight *authctx.Flight, loginPath string) func(http.Handler) http.Handler {
	if loginPath == "" {
		loginPath = "/login"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := SessionFromContext(r.Context())

			switch ResolveState(sess, flight) {
			case StateLoading:
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(loadingPlaceholder))

			case StateUnauthenticated:
				if IsHTMXRequest(r.Context()) {
					w.Header().Set("HX-Redirect", loginPath)
					http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, loginPath, http.StatusFound)

			case StateAuthenticated:
				ac := authctx.FromSession(sess, flight)
				ctx := context.WithValue(r.Context(), requestAuthKey, ac)
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

// AuthFromContext retrieves the auth capability attached by the guard.
func AuthFromContext(ctx context.Context) (*authctx.Context, bool) {
	if ctx == nil {
		return nil, false
	}
	ac, ok := ctx.Value(requestAuthKey).(*authctx.Context)
	return ac, ok && ac != nil
}
