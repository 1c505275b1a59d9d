package httpserver

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"pawtrack.dev/tracker-admin/internal/admin/authctx"
	custommw "pawtrack.dev/tracker-admin/internal/admin/httpserver/middleware"
	"pawtrack.dev/tracker-admin/internal/admin/metrics"
	appsession "pawtrack.dev/tracker-admin/internal/admin/session"
	"pawtrack.dev/tracker-admin/internal/admin/templates/auth"
)

const (
	actionLogin  = "login"
	actionLogout = "logout"
)

// authHandlers owns every session mutation in the dashboard. Views never
// write the cookie; they only read the state these handlers committed.
type authHandlers struct {
	store     custommw.SessionStore
	service   *authctx.Service
	flight    *authctx.Flight
	metrics   *metrics.Metrics
	logger    *zap.Logger
	basePath  string
	loginPath string
}

func newAuthHandlers(store custommw.SessionStore, service *authctx.Service, flight *authctx.Flight, m *metrics.Metrics, logger *zap.Logger, basePath, loginPath string) *authHandlers {
	if store == nil {
		panic("auth: session store is required")
	}
	if service == nil {
		panic("auth: sign-in service is required")
	}
	if flight == nil {
		flight = authctx.NewFlight()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(basePath) == "" {
		basePath = "/"
	}
	if strings.TrimSpace(loginPath) == "" {
		loginPath = resolveLoginPath(basePath, "")
	}
	return &authHandlers{
		store:     store,
		service:   service,
		flight:    flight,
		metrics:   m,
		logger:    logger,
		basePath:  basePath,
		loginPath: loginPath,
	}
}

// Gateway applies a session action submitted as a form. Login with an empty
// token and unrecognised actions are silent no-ops; logout always destroys
// the session, even when none was active. The cookie is committed before any
// redirect so the Set-Cookie header precedes the status line write.
func (h *authHandlers) Gateway(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	sess, _ := custommw.SessionFromContext(r.Context())
	if sess == nil {
		sess = h.store.New()
	}

	switch r.PostFormValue("action") {
	case actionLogin:
		token := strings.TrimSpace(r.PostFormValue("token"))
		if token == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.applyLogin(w, r, sess, token)

	case actionLogout:
		h.applyLogout(w, r, sess)

	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *authHandlers) applyLogin(w http.ResponseWriter, r *http.Request, sess *appsession.Session, token string) {
	sess.SetToken(token)
	if err := h.store.Save(w, sess); err != nil {
		h.logger.Error("commit session failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.metrics.ObserveGatewayAction(actionLogin)

	target := h.homeTarget()
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *authHandlers) applyLogout(w http.ResponseWriter, r *http.Request, sess *appsession.Session) {
	sess.Destroy()
	if err := h.store.Save(w, sess); err != nil {
		h.store.Destroy(w)
	}
	h.metrics.ObserveGatewayAction(actionLogout)

	redirect := h.loginURLWithParams(map[string]string{"status": "logged_out"})
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", redirect)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// LoginForm renders the sign-in screen. A pending flash error from the
// previous submission is consumed here and the cleared session committed
// before rendering, so refreshing the page never replays the message.
func (h *authHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	sess, _ := custommw.SessionFromContext(r.Context())
	if sess != nil && sess.Authenticated() {
		http.Redirect(w, r, h.homeTarget(), http.StatusFound)
		return
	}

	q := r.URL.Query()
	data := auth.LoginPageData{
		Email:     strings.TrimSpace(q.Get("email")),
		Message:   messageForQuery(q),
		LoginPath: h.loginPath,
		CSRFToken: custommw.CSRFTokenFromContext(r.Context()),
	}
	if sess != nil {
		if flash := sess.ConsumeFlashError(); flash != "" {
			data.Error = flash
			if err := h.store.Save(w, sess); err != nil {
				h.logger.Error("commit session failed", zap.Error(err))
			}
		}
	}

	h.renderLoginPage(w, r, data, http.StatusOK)
}

// LoginSubmit exchanges the submitted credentials for a bearer token and, on
// success, performs the login action in the same round-trip. Failures are
// stored as a single-use flash and answered with a redirect back to the form.
func (h *authHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		data := auth.LoginPageData{
			Error:     "The form could not be read. Please try again.",
			LoginPath: h.loginPath,
			CSRFToken: custommw.CSRFTokenFromContext(r.Context()),
		}
		h.renderLoginPage(w, r, data, http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	if email == "" || password == "" {
		data := auth.LoginPageData{
			Email:     email,
			Error:     "Email and password are required.",
			LoginPath: h.loginPath,
			CSRFToken: custommw.CSRFTokenFromContext(r.Context()),
		}
		h.renderLoginPage(w, r, data, http.StatusBadRequest)
		return
	}

	sess, _ := custommw.SessionFromContext(r.Context())
	if sess == nil {
		sess = h.store.New()
	}

	done := h.flight.Begin(sess.ID())
	result := h.service.Login(r.Context(), email, password)
	done()

	if !result.OK {
		sess.SetFlashError(result.Error)
		if err := h.store.Save(w, sess); err != nil {
			h.logger.Error("commit session failed", zap.Error(err))
		}
		redirect := h.loginURLWithParams(map[string]string{"email": email})
		if custommw.IsHTMXRequest(r.Context()) {
			w.Header().Set("HX-Redirect", redirect)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}

	h.logger.Info("operator signed in",
		zap.String("subject", result.SubjectID),
		zap.String("email", result.Email))
	h.applyLogin(w, r, sess, result.Token)
}

func (h *authHandlers) renderLoginPage(w http.ResponseWriter, r *http.Request, data auth.LoginPageData, status int) {
	if status != http.StatusOK {
		// WriteHeader freezes the header map, so the content type has to be
		// in place before the error status goes out.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	templ.Handler(auth.LoginPage(data)).ServeHTTP(w, r)
}

func (h *authHandlers) homeTarget() string {
	if strings.TrimSpace(h.basePath) == "" {
		return "/"
	}
	return h.basePath
}

func (h *authHandlers) loginURLWithParams(params map[string]string) string {
	parsed, err := url.Parse(h.loginPath)
	if err != nil {
		return h.loginPath
	}
	q := parsed.Query()
	for key, val := range params {
		if strings.TrimSpace(val) == "" {
			continue
		}
		q.Set(key, val)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

func messageForQuery(q url.Values) string {
	if q == nil {
		return ""
	}
	if q.Get("status") == "logged_out" {
		return "You have been signed out."
	}
	if q.Get("reason") == "expired" {
		return "Your session is no longer valid. Please sign in again."
	}
	return ""
}
