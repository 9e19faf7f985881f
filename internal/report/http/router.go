// Package http wires the route handlers behind the security pipeline.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fieldops/salesreport/internal/report/service"
	"github.com/fieldops/salesreport/internal/report/store"
	"github.com/fieldops/salesreport/pkg/httpx"
	"github.com/fieldops/salesreport/pkg/jwtx"
	"github.com/fieldops/salesreport/pkg/ratelimit"
	"github.com/fieldops/salesreport/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	tokens       *jwtx.Service
	limiter      *ratelimit.Limiter
	production   bool
	authCookie   string
	csrfCookie   string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService     *service.AuthService
	ReportService   *service.ReportService
	CustomerService *service.CustomerService
}

// Config is what NewRouter needs beyond the services.
type Config struct {
	Tokens       *jwtx.Service
	Limiter      *ratelimit.Limiter
	Production   bool
	AuthCookie   string
	CSRFCookie   string
	BuildVersion string
	Store        store.Store
	Logger       *slog.Logger
}

func NewRouter(cfg Config) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		tokens:       cfg.Tokens,
		limiter:      cfg.Limiter,
		production:   cfg.Production,
		authCookie:   cfg.AuthCookie,
		csrfCookie:   cfg.CSRFCookie,
		buildVersion: cfg.BuildVersion,
		startTime:    time.Now(),
		logger:       cfg.Logger,
		store:        cfg.Store,
	}

	// Global chain: request logging first so every later stage logs with a
	// request ID, then the security pipeline gating everything else.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Pipeline(httpx.PipelineConfig{
			Limiter:           r.limiter,
			Tokens:            r.tokens,
			Production:        r.production,
			ProtectedPrefixes: []string{"/api"},
			PublicPaths: map[string]struct{}{
				"/api/auth/login":   {},
				"/api/auth/refresh": {},
			},
			AuthCookie: r.authCookie,
			CSRFCookie: r.csrfCookie,
		}),
	}

	return r
}

// ApplyRoutes registers every handler. Must run after the services are
// wired.
func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerReports()
	r.registerCustomers()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService: r.AuthService,
		AuthCookie:  r.authCookie,
		Production:  r.production,
	}

	r.Mux.Handle("POST /api/auth/login", http.HandlerFunc(h.HandleLogin))
	r.Mux.Handle("POST /api/auth/refresh", http.HandlerFunc(h.HandleRefresh))
	r.Mux.Handle("POST /api/auth/logout", http.HandlerFunc(h.HandleLogout))
	r.Mux.Handle("GET /api/me", httpx.Chain(http.HandlerFunc(h.HandleMe),
		httpx.RequireAuth(r.tokens, r.authCookie),
	))
	r.Mux.Handle("POST /api/me/password", httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
		httpx.RequireAuth(r.tokens, r.authCookie),
	))
}

func (r *Router) registerReports() {
	h := &ReportsHandler{ReportService: r.ReportService}

	// Every report route re-verifies the token even though the pipeline has
	// already authenticated /api; defense in depth.
	auth := httpx.RequireAuth(r.tokens, r.authCookie)

	r.Mux.Handle("GET /api/reports", httpx.Chain(http.HandlerFunc(h.HandleList), auth))
	r.Mux.Handle("POST /api/reports", httpx.Chain(http.HandlerFunc(h.HandleCreate), auth))
	r.Mux.Handle("GET /api/reports/{id}", httpx.Chain(http.HandlerFunc(h.HandleGet), auth))
	r.Mux.Handle("PUT /api/reports/{id}", httpx.Chain(http.HandlerFunc(h.HandleUpdate), auth))
	r.Mux.Handle("DELETE /api/reports/{id}", httpx.Chain(http.HandlerFunc(h.HandleDelete), auth))
}

func (r *Router) registerCustomers() {
	h := &CustomersHandler{CustomerService: r.CustomerService}

	auth := httpx.RequireAuth(r.tokens, r.authCookie)
	manager := httpx.RequireManager()

	r.Mux.Handle("GET /api/customers", httpx.Chain(http.HandlerFunc(h.HandleList), auth))
	r.Mux.Handle("GET /api/customers/{id}", httpx.Chain(http.HandlerFunc(h.HandleGet), auth))
	r.Mux.Handle("POST /api/customers", httpx.Chain(http.HandlerFunc(h.HandleCreate), auth, manager))
	r.Mux.Handle("PUT /api/customers/{id}", httpx.Chain(http.HandlerFunc(h.HandleUpdate), auth, manager))
	r.Mux.Handle("DELETE /api/customers/{id}", httpx.Chain(http.HandlerFunc(h.HandleDelete), auth, manager))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
