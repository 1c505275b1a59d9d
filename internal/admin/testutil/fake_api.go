package testutil

import (
	"context"
	"sync"

	"pawtrack.dev/tracker-admin/internal/admin/tracker"
)

// FakeAPI is an in-memory tracker backend. It records every credential pair
// and every bearer token presented to it; each operation can be overridden
// per test via the corresponding Func field.
type FakeAPI struct {
	mu sync.Mutex

	SignInFunc  func(ctx context.Context, creds tracker.Credentials) (*tracker.SignInResult, error)
	DevicesFunc func(ctx context.Context, token string) ([]tracker.Device, error)
	UsersFunc   func(ctx context.Context, token string) ([]tracker.User, error)
	LogsFunc    func(ctx context.Context, token string) (string, error)

	signIns []tracker.Credentials
	tokens  []string
}

// NewFakeAPI returns a backend that accepts any credentials and issues the
// token "issued-token".
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{}
}

func (f *FakeAPI) SignIn(ctx context.Context, creds tracker.Credentials) (*tracker.SignInResult, error) {
	f.mu.Lock()
	f.signIns = append(f.signIns, creds)
	fn := f.SignInFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, creds)
	}
	return &tracker.SignInResult{
		Token:    "issued-token",
		UserID:   "11111111-1111-1111-1111-111111111111",
		Email:    creds.Email,
		Nickname: "operator",
	}, nil
}

func (f *FakeAPI) AdminDevices(ctx context.Context, token string) ([]tracker.Device, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	fn := f.DevicesFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, token)
	}
	return nil, nil
}

func (f *FakeAPI) AdminUsers(ctx context.Context, token string) ([]tracker.User, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	fn := f.UsersFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, token)
	}
	return nil, nil
}

func (f *FakeAPI) AdminLogs(ctx context.Context, token string) (string, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	fn := f.LogsFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, token)
	}
	return "", nil
}

// SignIns returns the credential pairs seen so far.
func (f *FakeAPI) SignIns() []tracker.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tracker.Credentials(nil), f.signIns...)
}

// Tokens returns every bearer token presented on protected calls.
func (f *FakeAPI) Tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}
