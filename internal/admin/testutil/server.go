// Package testutil spins up the full admin HTTP stack against a fake tracker
// backend for integration-style tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"pawtrack.dev/tracker-admin/internal/admin/authctx"
	"pawtrack.dev/tracker-admin/internal/admin/httpserver"
	"pawtrack.dev/tracker-admin/internal/admin/metrics"
	"pawtrack.dev/tracker-admin/internal/admin/session"
)

// TestHashKey and TestBlockKey are fixed cookie keys for tests.
var (
	TestHashKey  = []byte("0123456789abcdef0123456789abcdef")
	TestBlockKey = []byte("fedcba9876543210fedcba9876543210")
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithBasePath sets a custom base path for the admin routes.
func WithBasePath(path string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BasePath = path
	}
}

// Env bundles the running test server with the collaborators tests need to
// mint cookies and inspect backend traffic.
type Env struct {
	Server *httptest.Server
	Store  *session.Manager
	Flight *authctx.Flight
	API    *FakeAPI
}

// NewEnv constructs an httptest server running the admin stack against a
// fake backend, with an isolated metrics registry per test.
func NewEnv(t testing.TB, opts ...ServerOption) *Env {
	t.Helper()

	insecure := false
	store, err := session.NewManager(session.Config{
		HashKey:      TestHashKey,
		BlockKey:     TestBlockKey,
		CookieSecure: &insecure,
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	api := NewFakeAPI()
	flight := authctx.NewFlight()
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	cfg := httpserver.Config{
		Address:  ":0",
		BasePath: "/admin",
		Store:    store,
		Service:  authctx.NewService(api, zap.NewNop(), m),
		Flight:   flight,
		API:      api,
		Metrics:  m,
		Gatherer: registry,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ts := httptest.NewServer(httpserver.Router(cfg))
	t.Cleanup(ts.Close)

	return &Env{
		Server: ts,
		Store:  store,
		Flight: flight,
		API:    api,
	}
}

// SessionCookie mints a valid session cookie holding the given token.
func (e *Env) SessionCookie(t testing.TB, token string) *http.Cookie {
	t.Helper()

	_, cookie := e.NewSession(t, token)
	return cookie
}

// NewSession mints a session with the given token and returns it together
// with its encoded cookie.
func (e *Env) NewSession(t testing.TB, token string) (*session.Session, *http.Cookie) {
	t.Helper()

	sess := e.Store.New()
	sess.SetToken(token)
	cookie, err := e.Store.Commit(sess)
	if err != nil {
		t.Fatalf("commit session: %v", err)
	}
	return sess, cookie
}

// Client returns an HTTP client with a cookie jar that does not follow
// redirects, so tests can assert on 3xx responses directly.
func (e *Env) Client(t testing.TB) *http.Client {
	t.Helper()

	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
