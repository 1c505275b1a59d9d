// Package ui holds the handlers for the guarded dashboard views. Every
// handler reads its auth capability from the request context; none of them
// touches the session cookie.
package ui

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	custommw "pawtrack.dev/tracker-admin/internal/admin/httpserver/middleware"
	"pawtrack.dev/tracker-admin/internal/admin/templates/devices"
	logstpl "pawtrack.dev/tracker-admin/internal/admin/templates/logs"
	"pawtrack.dev/tracker-admin/internal/admin/templates/partials"
	userstpl "pawtrack.dev/tracker-admin/internal/admin/templates/users"
	"pawtrack.dev/tracker-admin/internal/admin/tracker"
)

const fetchFailedMessage = "Could not load data from the tracker backend. Please try again."

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	API       tracker.API
	Logger    *zap.Logger
	BasePath  string
	AuthPath  string
	LoginPath string
}

// Handlers exposes HTTP handlers for the dashboard pages and fragments.
type Handlers struct {
	api       tracker.API
	logger    *zap.Logger
	basePath  string
	authPath  string
	loginPath string
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	if deps.API == nil {
		panic("ui: tracker API is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		api:       deps.API,
		logger:    logger,
		basePath:  deps.BasePath,
		authPath:  deps.AuthPath,
		loginPath: deps.LoginPath,
	}
}

// Devices renders the device inventory page.
func (h *Handlers) Devices(w http.ResponseWriter, r *http.Request) {
	ac, ok := custommw.AuthFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	data := devices.PageData{Page: h.pageData(r, "Devices", "devices")}
	list, err := h.api.AdminDevices(r.Context(), ac.Token())
	if err != nil {
		if h.redirectExpired(w, r, err) {
			return
		}
		h.logger.Warn("device listing failed", zap.Error(err))
		data.Error = fetchFailedMessage
	} else {
		data.Devices = list
	}

	templ.Handler(devices.Index(data)).ServeHTTP(w, r)
}

// Users renders the registered user listing.
func (h *Handlers) Users(w http.ResponseWriter, r *http.Request) {
	ac, ok := custommw.AuthFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	data := userstpl.PageData{Page: h.pageData(r, "Users", "users")}
	list, err := h.api.AdminUsers(r.Context(), ac.Token())
	if err != nil {
		if h.redirectExpired(w, r, err) {
			return
		}
		h.logger.Warn("user listing failed", zap.Error(err))
		data.Error = fetchFailedMessage
	} else {
		data.Users = list
	}

	templ.Handler(userstpl.Index(data)).ServeHTTP(w, r)
}

// Logs renders the backend log page with a self-refreshing pane.
func (h *Handlers) Logs(w http.ResponseWriter, r *http.Request) {
	data, ok := h.buildLogData(w, r)
	if !ok {
		return
	}
	templ.Handler(logstpl.Index(data)).ServeHTTP(w, r)
}

// LogsFragment serves the bare log pane for htmx polling.
func (h *Handlers) LogsFragment(w http.ResponseWriter, r *http.Request) {
	data, ok := h.buildLogData(w, r)
	if !ok {
		return
	}
	templ.Handler(logstpl.Tail(data)).ServeHTTP(w, r)
}

func (h *Handlers) buildLogData(w http.ResponseWriter, r *http.Request) (logstpl.PageData, bool) {
	ac, ok := custommw.AuthFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return logstpl.PageData{}, false
	}

	data := logstpl.PageData{
		Page:         h.pageData(r, "Logs", "logs"),
		FragmentPath: h.basePath + "/fragments/logs",
	}

	raw, err := h.api.AdminLogs(r.Context(), ac.Token())
	if err != nil {
		if h.redirectExpired(w, r, err) {
			return logstpl.PageData{}, false
		}
		h.logger.Warn("log fetch failed", zap.Error(err))
		data.Error = fetchFailedMessage
		return data, true
	}

	data.Lines = logstpl.Lines(raw)
	return data, true
}

// redirectExpired sends the operator back to the login screen when the
// backend no longer accepts the stored token. The session cookie itself is
// left alone; the gateway replaces it on the next successful sign-in.
func (h *Handlers) redirectExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	var fetchErr *tracker.FetchError
	if !errors.As(err, &fetchErr) {
		return false
	}
	if fetchErr.StatusCode != http.StatusUnauthorized && fetchErr.StatusCode != http.StatusForbidden {
		return false
	}

	target := h.loginPath + "?reason=expired"
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusUnauthorized)
		return true
	}
	http.Redirect(w, r, target, http.StatusFound)
	return true
}

func (h *Handlers) pageData(r *http.Request, title, activeNav string) partials.PageData {
	return partials.PageData{
		Title:         title,
		BasePath:      h.basePath,
		AuthPath:      h.authPath,
		CSRFToken:     custommw.CSRFTokenFromContext(r.Context()),
		Authenticated: true,
		ActiveNav:     activeNav,
	}
}
