// Package authctx holds the per-session authentication capability handed to
// guarded handlers, and the sign-in service that exchanges credentials for a
// bearer token. Neither is reachable through ambient globals: both are
// constructed once and passed down explicitly.
package authctx

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"pawtrack.dev/tracker-admin/internal/admin/metrics"
	"pawtrack.dev/tracker-admin/internal/admin/session"
	"pawtrack.dev/tracker-admin/internal/admin/tracker"
)

const (
	genericSignInError  = "Sign-in failed. Please try again."
	genericNetworkError = "Could not reach the tracker backend. Please try again."
)

// Result is the outcome of a sign-in attempt. Failures are values, never
// raised errors: Error carries the message shown to the operator.
type Result struct {
	OK          bool
	Token       string
	SubjectID   string
	Email       string
	DisplayName string
	Error       string
}

// SignInAPI is the slice of the backend client consumed by the Service.
type SignInAPI interface {
	SignIn(ctx context.Context, creds tracker.Credentials) (*tracker.SignInResult, error)
}

// Service performs credential exchange against the tracker backend.
type Service struct {
	api     SignInAPI
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewService wires the sign-in service.
func NewService(api SignInAPI, logger *zap.Logger, m *metrics.Metrics) *Service {
	if api == nil {
		panic("authctx: sign-in API is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, logger: logger, metrics: m}
}

// Login exchanges credentials for a token. On a rejected sign-in the
// backend's message is preferred when present, else a generic one; transport
// failures always map to a generic message and never leak error internals.
func (s *Service) Login(ctx context.Context, identifier, secret string) Result {
	result, err := s.api.SignIn(ctx, tracker.Credentials{Email: identifier, Password: secret})
	if err != nil {
		var authErr *tracker.AuthError
		if errors.As(err, &authErr) {
			s.metrics.ObserveSignIn("rejected")
			s.logger.Warn("sign-in rejected",
				zap.String("identifier", identifier),
				zap.Int("status", authErr.StatusCode))
			message := authErr.Message
			if message == "" {
				message = genericSignInError
			}
			return Result{Error: message}
		}

		s.metrics.ObserveSignIn("error")
		s.logger.Error("sign-in transport failure", zap.Error(err))
		return Result{Error: genericNetworkError}
	}

	s.metrics.ObserveSignIn("ok")
	return Result{
		OK:          true,
		Token:       result.Token,
		SubjectID:   result.UserID,
		Email:       result.Email,
		DisplayName: result.Nickname,
	}
}

// Flight tracks pending login/logout submissions per browser session, keyed
// by session ID. The guard reports Loading for a session with a pending
// submission. Entries are reference-counted; concurrent submissions from the
// same session are not serialised (last cookie commit wins).
type Flight struct {
	mu      sync.Mutex
	pending map[string]int
}

// NewFlight constructs an empty in-flight tracker.
func NewFlight() *Flight {
	return &Flight{pending: make(map[string]int)}
}

// Begin marks a submission as pending for the session and returns the
// completion callback. The callback is safe to call exactly once.
func (f *Flight) Begin(sessionID string) func() {
	f.mu.Lock()
	f.pending[sessionID]++
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.pending[sessionID] <= 1 {
				delete(f.pending, sessionID)
			} else {
				f.pending[sessionID]--
			}
			f.mu.Unlock()
		})
	}
}

// InFlight reports whether the session has a pending submission.
func (f *Flight) InFlight(sessionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending[sessionID] > 0
}

// Context is the per-session authentication view handed to guarded handlers.
// It is derived from the session on every request and never mutated by
// views; all state changes flow through the gateway endpoint.
type Context struct {
	sessionID string
	token     string
	flight    *Flight
}

// FromSession derives the capability for the current request.
func FromSession(sess *session.Session, flight *Flight) *Context {
	if sess == nil {
		return &Context{flight: flight}
	}
	return &Context{
		sessionID: sess.ID(),
		token:     sess.Token(),
		flight:    flight,
	}
}

// Token returns the current bearer token, empty when unauthenticated.
func (c *Context) Token() string {
	return c.token
}

// IsAuthenticated reports whether a token is present. Presence is necessary
// but not sufficient: the backend remains the final authority.
func (c *Context) IsAuthenticated() bool {
	return c.token != ""
}

// InFlight reports whether a login/logout submission for this session is
// still pending.
func (c *Context) InFlight() bool {
	if c.flight == nil {
		return false
	}
	return c.flight.InFlight(c.sessionID)
}

// AuthHeaders builds the headers for protected data calls. The header set is
// constructed even when the token is empty.
func (c *Context) AuthHeaders() http.Header {
	return tracker.BearerHeader(c.token)
}
