package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const (
	defaultCookieName = "__session"
	defaultCookiePath = "/"
	defaultLifetime   = 7 * 24 * time.Hour
)

// ErrInvalidConfig indicates the manager was initialised with missing or invalid options.
var ErrInvalidConfig = fmt.Errorf("session: invalid config")

// Data is the full persisted session payload. A session with no token carries
// no identity at all and is indistinguishable from "never logged in".
type Data struct {
	ID         string `json:"id"`
	Token      string `json:"token,omitempty"`
	FlashError string `json:"flashError,omitempty"`
}

// Session holds mutable state for the current request lifecycle.
type Session struct {
	data      Data
	dirty     bool
	destroyed bool
}

// Config controls cookie encoding and lifecycle for the session manager.
type Config struct {
	CookieName     string
	HashKey        []byte
	BlockKey       []byte
	CookiePath     string
	CookieDomain   string
	CookieSecure   *bool
	CookieHTTPOnly *bool
	CookieSameSite http.SameSite

	// Lifetime bounds the cookie Max-Age only. Token expiry is the backend's
	// concern and is never evaluated locally.
	Lifetime time.Duration
}

// Manager decodes and persists session state via signed, encrypted cookies.
type Manager struct {
	cfg      Config
	codec    *securecookie.SecureCookie
	secure   bool
	httpOnly bool
}

// NewManager constructs a Manager using the provided configuration.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}

	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = defaultCookiePath
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = defaultLifetime
	}
	if cfg.CookieSameSite == 0 || cfg.CookieSameSite == http.SameSiteDefaultMode {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}

	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.Lifetime.Seconds()))

	secure := true
	if cfg.CookieSecure != nil {
		secure = *cfg.CookieSecure
	}
	httpOnly := true
	if cfg.CookieHTTPOnly != nil {
		httpOnly = *cfg.CookieHTTPOnly
	}

	return &Manager{
		cfg:      cfg,
		codec:    codec,
		secure:   secure,
		httpOnly: httpOnly,
	}, nil
}

// CookieName returns the configured session cookie name.
func (m *Manager) CookieName() string {
	return m.cfg.CookieName
}

// Load retrieves the session from the incoming request. It is total: a
// missing, malformed, or tampered cookie yields a fresh empty session and
// never an error.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return m.New()
	}

	var stored Data
	if err := m.codec.Decode(m.cfg.CookieName, cookie.Value, &stored); err != nil {
		return m.New()
	}
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	return &Session{data: stored}
}

// New returns a pristine empty session with a generated identifier.
func (m *Manager) New() *Session {
	return &Session{
		data:  Data{ID: uuid.NewString()},
		dirty: true,
	}
}

// Commit encodes the full current session into a fresh cookie. The returned
// cookie always reflects the complete payload, never a delta.
func (m *Manager) Commit(sess *Session) (*http.Cookie, error) {
	if sess == nil {
		return nil, fmt.Errorf("session: nil session")
	}

	encoded, err := m.codec.Encode(m.cfg.CookieName, sess.snapshot())
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    encoded,
		Path:     m.cfg.CookiePath,
		Domain:   m.cfg.CookieDomain,
		MaxAge:   int(m.cfg.Lifetime.Seconds()),
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.cfg.CookieSameSite,
	}, nil
}

// Save writes the session back to the response as a cookie. Destroyed
// sessions clear the cookie instead.
func (m *Manager) Save(w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return fmt.Errorf("session: nil session")
	}
	if sess.destroyed {
		http.SetCookie(w, m.expiredCookie())
		return nil
	}

	cookie, err := m.Commit(sess)
	if err != nil {
		return err
	}
	http.SetCookie(w, cookie)
	return nil
}

// Destroy clears the session cookie immediately. It succeeds regardless of
// whether a session existed.
func (m *Manager) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, m.expiredCookie())
}

func (m *Manager) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     m.cfg.CookiePath,
		Domain:   m.cfg.CookieDomain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.cfg.CookieSameSite,
	}
}

// ID returns the stable session identifier.
func (s *Session) ID() string {
	return s.data.ID
}

// Token returns the stored bearer token, empty when no session is active.
func (s *Session) Token() string {
	return s.data.Token
}

// SetToken replaces the stored bearer token.
func (s *Session) SetToken(token string) {
	if s.data.Token == token {
		return
	}
	s.data.Token = token
	s.dirty = true
}

// Authenticated reports whether the session holds a bearer token.
func (s *Session) Authenticated() bool {
	return s.data.Token != ""
}

// FlashError returns the pending flash message without clearing it.
func (s *Session) FlashError() string {
	return s.data.FlashError
}

// SetFlashError stores a single-use error message for the next render.
func (s *Session) SetFlashError(message string) {
	if s.data.FlashError == message {
		return
	}
	s.data.FlashError = message
	s.dirty = true
}

// ConsumeFlashError returns the pending flash message and clears it.
func (s *Session) ConsumeFlashError() string {
	message := s.data.FlashError
	if message != "" {
		s.data.FlashError = ""
		s.dirty = true
	}
	return message
}

// Destroy marks the session for deletion at the end of the request.
func (s *Session) Destroy() {
	s.destroyed = true
	s.dirty = true
}

// Destroyed exposes the destroy marker.
func (s *Session) Destroyed() bool {
	return s.destroyed
}

// Dirty indicates whether the session contents changed during this request.
func (s *Session) Dirty() bool {
	return s.dirty
}

func (s *Session) snapshot() Data {
	return s.data
}
