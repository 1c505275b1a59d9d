// Package httpserver assembles the admin dashboard's router: public auth
// routes, the guarded view subtree, and operational endpoints.
package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pawtrack.dev/tracker-admin/internal/admin/authctx"
	custommw "pawtrack.dev/tracker-admin/internal/admin/httpserver/middleware"
	"pawtrack.dev/tracker-admin/internal/admin/httpserver/ui"
	"pawtrack.dev/tracker-admin/internal/admin/metrics"
	"pawtrack.dev/tracker-admin/internal/admin/tracker"
	"pawtrack.dev/tracker-admin/public"
)

// Config holds runtime options for the admin HTTP server.
type Config struct {
	Address   string
	BasePath  string
	LoginPath string

	Store   custommw.SessionStore
	Service *authctx.Service
	Flight  *authctx.Flight
	API     tracker.API

	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// Gatherer serves /metrics; defaults to the process-wide registry.
	Gatherer prometheus.Gatherer

	CSRFCookieName string
	// CSRFCookieSecure defaults to true, matching the session cookie.
	CSRFCookieSecure *bool
	CSRFHeaderName   string
}

// New constructs the HTTP server with the full middleware stack and embedded
// assets. The handler is also reachable via Router for in-process tests.
func New(cfg Config) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      Router(cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Router builds the chi handler tree for the given configuration.
func Router(cfg Config) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	flight := cfg.Flight
	if flight == nil {
		flight = authctx.NewFlight()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	basePath := normalizeBasePath(cfg.BasePath)
	loginPath := resolveLoginPath(basePath, cfg.LoginPath)
	authPath := basePath + "/auth"
	if basePath == "/" {
		authPath = "/auth"
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(60 * time.Second))

	staticContent, err := public.StaticFS()
	if err != nil {
		logger.Fatal("embed static assets", zap.Error(err))
	}
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))

	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	auth := newAuthHandlers(cfg.Store, cfg.Service, flight, cfg.Metrics, logger, basePath, loginPath)
	views := ui.NewHandlers(ui.Dependencies{
		API:       cfg.API,
		Logger:    logger,
		BasePath:  basePath,
		AuthPath:  authPath,
		LoginPath: loginPath,
	})

	csrfSecure := true
	if cfg.CSRFCookieSecure != nil {
		csrfSecure = *cfg.CSRFCookieSecure
	}
	csrfCfg := custommw.CSRFConfig{
		CookieName: cfg.CSRFCookieName,
		CookiePath: basePath,
		HeaderName: cfg.CSRFHeaderName,
		Secure:     csrfSecure,
	}

	router.Route(basePath, func(r chi.Router) {
		r.Use(custommw.Session(cfg.Store))
		r.Use(custommw.HTMX())
		r.Use(custommw.CSRF(csrfCfg))

		r.Get("/login", auth.LoginForm)
		r.Post("/login", auth.LoginSubmit)
		r.Post("/auth", auth.Gateway)

		r.Group(func(protected chi.Router) {
			protected.Use(custommw.NoStore())
			protected.Use(custommw.Guard(flight, loginPath))

			protected.Get("/", views.Devices)
			protected.Get("/devices", views.Devices)
			protected.Get("/users", views.Users)
			protected.Get("/logs", views.Logs)
			protected.With(custommw.RequireHTMX()).Get("/fragments/logs", views.LogsFragment)
		})
	})

	return router
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/admin"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func resolveLoginPath(base string, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if base == "/" {
		return "/login"
	}
	return base + "/login"
}
