package authctx_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"pawtrack.dev/tracker-admin/internal/admin/authctx"
	"pawtrack.dev/tracker-admin/internal/admin/session"
	"pawtrack.dev/tracker-admin/internal/admin/tracker"
)

type fakeSignInAPI struct {
	result *tracker.SignInResult
	err    error

	mu    sync.Mutex
	creds []tracker.Credentials
}

func (f *fakeSignInAPI) SignIn(_ context.Context, creds tracker.Credentials) (*tracker.SignInResult, error) {
	f.mu.Lock()
	f.creds = append(f.creds, creds)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestServiceLoginSuccess(t *testing.T) {
	t.Parallel()

	api := &fakeSignInAPI{result: &tracker.SignInResult{
		Token:    "t1",
		UserID:   "user-1",
		Email:    "a@b.com",
		Nickname: "Ops",
	}}
	svc := authctx.NewService(api, nil, nil)

	res := svc.Login(context.Background(), "a@b.com", "x")
	require.True(t, res.OK)
	require.Equal(t, "t1", res.Token)
	require.Equal(t, "user-1", res.SubjectID)
	require.Equal(t, "Ops", res.DisplayName)
	require.Empty(t, res.Error)
	require.Equal(t, []tracker.Credentials{{Email: "a@b.com", Password: "x"}}, api.creds)
}

func TestServiceLoginRejectedPrefersBackendMessage(t *testing.T) {
	t.Parallel()

	api := &fakeSignInAPI{err: &tracker.AuthError{StatusCode: 401, Message: "Invalid credentials"}}
	svc := authctx.NewService(api, nil, nil)

	res := svc.Login(context.Background(), "a@b.com", "bad")
	require.False(t, res.OK)
	require.Empty(t, res.Token)
	require.Equal(t, "Invalid credentials", res.Error)
}

func TestServiceLoginRejectedWithoutMessageUsesGeneric(t *testing.T) {
	t.Parallel()

	api := &fakeSignInAPI{err: &tracker.AuthError{StatusCode: 502}}
	svc := authctx.NewService(api, nil, nil)

	res := svc.Login(context.Background(), "a@b.com", "x")
	require.False(t, res.OK)
	require.NotEmpty(t, res.Error)
	require.NotContains(t, res.Error, "502")
}

func TestServiceLoginNetworkFailureNeverLeaksInternals(t *testing.T) {
	t.Parallel()

	api := &fakeSignInAPI{err: errors.New("dial tcp 10.0.0.1:8000: connection refused")}
	svc := authctx.NewService(api, nil, nil)

	res := svc.Login(context.Background(), "a@b.com", "x")
	require.False(t, res.OK)
	require.NotEmpty(t, res.Error)
	require.NotContains(t, res.Error, "dial tcp")
	require.NotContains(t, res.Error, "connection refused")
}

func TestFlightTracksPerSession(t *testing.T) {
	t.Parallel()

	flight := authctx.NewFlight()
	require.False(t, flight.InFlight("s1"))

	done := flight.Begin("s1")
	require.True(t, flight.InFlight("s1"))
	require.False(t, flight.InFlight("s2"))

	// Overlapping submissions from the same session stack up.
	done2 := flight.Begin("s1")
	done()
	require.True(t, flight.InFlight("s1"))
	done2()
	require.False(t, flight.InFlight("s1"))

	// Completion callback is idempotent.
	done2()
	require.False(t, flight.InFlight("s1"))
}

func TestContextDerivedFromSession(t *testing.T) {
	t.Parallel()

	mgr, err := session.NewManager(session.Config{
		HashKey:  []byte("12345678901234567890123456789012"),
		BlockKey: []byte("abcdefghijklmnopqrstuv0123456789"),
	})
	require.NoError(t, err)

	flight := authctx.NewFlight()
	sess := mgr.New()

	ac := authctx.FromSession(sess, flight)
	require.False(t, ac.IsAuthenticated())
	require.False(t, ac.InFlight())
	require.Equal(t, "Bearer ", ac.AuthHeaders().Get("Authorization"))

	sess.SetToken("t1")
	ac = authctx.FromSession(sess, flight)
	require.True(t, ac.IsAuthenticated())
	require.Equal(t, "t1", ac.Token())
	require.Equal(t, "Bearer t1", ac.AuthHeaders().Get("Authorization"))
	require.Equal(t, "application/json", ac.AuthHeaders().Get("Content-Type"))

	done := flight.Begin(sess.ID())
	require.True(t, ac.InFlight())
	done()
	require.False(t, ac.InFlight())
}
