package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	hashKey := []byte("12345678901234567890123456789012")
	blockKey := []byte("abcdefghijklmnopqrstuv0123456789")
	secure := false
	mgr, err := NewManager(Config{
		CookieName:   "__session",
		HashKey:      hashKey,
		BlockKey:     blockKey,
		CookiePath:   "/",
		Lifetime:     7 * 24 * time.Hour,
		CookieSecure: &secure,
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	return mgr
}

func TestManager_RequiresHashKey(t *testing.T) {
	if _, err := NewManager(Config{}); err == nil {
		t.Fatalf("expected error for missing hash key")
	}
}

func TestManager_LoadWithoutCookie(t *testing.T) {
	mgr := newTestManager(t)

	req := httptest.NewRequest("GET", "/devices", nil)
	sess := mgr.Load(req)
	if sess == nil {
		t.Fatalf("expected session")
	}
	if sess.ID() == "" {
		t.Fatalf("expected session ID")
	}
	if sess.Authenticated() {
		t.Fatalf("fresh session must not be authenticated")
	}
	if sess.Token() != "" {
		t.Fatalf("fresh session must carry no token, got %q", sess.Token())
	}
}

func TestManager_LoadMalformedCookie(t *testing.T) {
	mgr := newTestManager(t)

	for _, value := range []string{"", "garbage", "a|b|c", "%%%%"} {
		req := httptest.NewRequest("GET", "/devices", nil)
		req.AddCookie(&http.Cookie{Name: "__session", Value: value})
		sess := mgr.Load(req)
		if sess == nil || sess.Authenticated() {
			t.Fatalf("malformed cookie %q must yield empty session", value)
		}
	}
}

func TestManager_TamperedCookieTreatedAsEmpty(t *testing.T) {
	mgr := newTestManager(t)

	sess := mgr.New()
	sess.SetToken("t1")
	cookie, err := mgr.Commit(sess)
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}

	// Flip a byte in the encoded payload to break the MAC.
	mangled := []byte(cookie.Value)
	mangled[len(mangled)/2] ^= 0x01
	req := httptest.NewRequest("GET", "/devices", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: string(mangled)})

	loaded := mgr.Load(req)
	if loaded.Authenticated() {
		t.Fatalf("tampered cookie must not authenticate")
	}
}

func TestManager_CommitRoundTrip(t *testing.T) {
	mgr := newTestManager(t)

	sess := mgr.New()
	sess.SetToken("t1")
	sess.SetFlashError("something went wrong")

	cookie, err := mgr.Commit(sess)
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if !cookie.HttpOnly {
		t.Fatalf("expected httpOnly cookie")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("expected SameSite=Lax, got %v", cookie.SameSite)
	}
	if cookie.Path != "/" {
		t.Fatalf("expected Path=/, got %q", cookie.Path)
	}
	if want := int((7 * 24 * time.Hour).Seconds()); cookie.MaxAge != want {
		t.Fatalf("expected MaxAge=%d, got %d", want, cookie.MaxAge)
	}

	req := httptest.NewRequest("GET", "/devices", nil)
	req.AddCookie(cookie)
	loaded := mgr.Load(req)
	if loaded.ID() != sess.ID() {
		t.Fatalf("ID mismatch: %q != %q", loaded.ID(), sess.ID())
	}
	if loaded.Token() != "t1" {
		t.Fatalf("token mismatch: %q", loaded.Token())
	}
	if loaded.FlashError() != "something went wrong" {
		t.Fatalf("flash mismatch: %q", loaded.FlashError())
	}
}

func TestManager_SecureByDefault(t *testing.T) {
	mgr, err := NewManager(Config{HashKey: []byte("12345678901234567890123456789012")})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	cookie, err := mgr.Commit(mgr.New())
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if !cookie.Secure {
		t.Fatalf("expected Secure cookie by default")
	}
	if cookie.Name != "__session" {
		t.Fatalf("expected default cookie name __session, got %q", cookie.Name)
	}
}

func TestManager_DestroyClearsRegardlessOfState(t *testing.T) {
	mgr := newTestManager(t)

	rec := httptest.NewRecorder()
	mgr.Destroy(rec)
	cookie := findCookie(rec.Result().Cookies(), "__session")
	if cookie == nil || cookie.MaxAge != -1 || cookie.Value != "" {
		t.Fatalf("expected clearing cookie, got %+v", cookie)
	}

	// Destroy followed by read yields an empty session.
	req := httptest.NewRequest("GET", "/devices", nil)
	req.AddCookie(cookie)
	if sess := mgr.Load(req); sess.Authenticated() {
		t.Fatalf("destroyed cookie must read as empty session")
	}
}

func TestManager_SaveDestroyedSession(t *testing.T) {
	mgr := newTestManager(t)

	sess := mgr.New()
	sess.SetToken("t1")
	sess.Destroy()

	rec := httptest.NewRecorder()
	if err := mgr.Save(rec, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	cookie := findCookie(rec.Result().Cookies(), "__session")
	if cookie == nil || cookie.MaxAge != -1 {
		t.Fatalf("expected session cookie cleared, got %+v", cookie)
	}
}

func TestSession_FlashErrorSingleUse(t *testing.T) {
	mgr := newTestManager(t)

	sess := mgr.New()
	sess.SetFlashError("Invalid email or password")
	if got := sess.ConsumeFlashError(); got != "Invalid email or password" {
		t.Fatalf("unexpected flash: %q", got)
	}
	if got := sess.ConsumeFlashError(); got != "" {
		t.Fatalf("flash must clear after consumption, got %q", got)
	}
	if !sess.Dirty() {
		t.Fatalf("consuming flash must mark session dirty")
	}
}

func TestManager_SameSiteDefaultsToLax(t *testing.T) {
	mgr, err := NewManager(Config{
		HashKey: []byte("12345678901234567890123456789012"),
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	cookie, err := mgr.Commit(mgr.New())
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unset config must yield SameSite=Lax, got %v", cookie.SameSite)
	}

	strict, err := NewManager(Config{
		HashKey:        []byte("12345678901234567890123456789012"),
		CookieSameSite: http.SameSiteStrictMode,
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	cookie, err = strict.Commit(strict.New())
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("explicit SameSite must be honoured, got %v", cookie.SameSite)
	}
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
