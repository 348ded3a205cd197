package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"bookstack/internal/app"
	"bookstack/internal/ratelimit"
	"bookstack/internal/util"
	"bookstack/pkg/domain"
)

// Rate limit defaults. Every route is limited per client IP; the book
// listing carries a tighter override.
const (
	defaultRateLimit  = 3
	defaultRateWindow = 5 * time.Second
	listRateLimit     = 1
	listRateWindow    = 2 * time.Second
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App   *app.App
	Redis *redis.Client

	// TrustedProxies decides whether forwarded headers may identify the
	// caller for rate limiting. Nil trusts no proxy.
	TrustedProxies *util.TrustedProxies

	// Overrides for tests; zero values fall back to the constants above.
	DefaultRateLimit  int
	DefaultRateWindow time.Duration
	ListRateLimit     int
	ListRateWindow    time.Duration
}

// route declares the full access policy of one endpoint. The table below is
// the single source of truth consulted by the guard dispatcher; no handler
// re-checks auth, roles, or rate limits.
type route struct {
	method      string
	pattern     string
	requireAuth bool
	roles       []domain.Role // empty: no role gate
	limit       int
	window      time.Duration
	handler     func(s *Server, w http.ResponseWriter, r *http.Request, caller domain.User)
}

// Server exposes the HTTP surface of the backend.
type Server struct {
	app      *app.App
	mux      *http.ServeMux
	validate *validator.Validate
	trusted  *util.TrustedProxies
	limiters map[string]*ratelimit.FixedWindowLimiter
}

// New constructs the server with routes, guards, and limiters configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app is required")
	}
	if cfg.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	defaultLimit := cfg.DefaultRateLimit
	if defaultLimit <= 0 {
		defaultLimit = defaultRateLimit
	}
	defaultWindow := cfg.DefaultRateWindow
	if defaultWindow <= 0 {
		defaultWindow = defaultRateWindow
	}
	listLimit := cfg.ListRateLimit
	if listLimit <= 0 {
		listLimit = listRateLimit
	}
	listWindow := cfg.ListRateWindow
	if listWindow <= 0 {
		listWindow = listRateWindow
	}

	s := &Server{
		app:      cfg.App,
		mux:      http.NewServeMux(),
		validate: validator.New(),
		trusted:  cfg.TrustedProxies,
		limiters: make(map[string]*ratelimit.FixedWindowLimiter),
	}

	routes := []route{
		{method: http.MethodPost, pattern: "/auth/signup", handler: (*Server).handleSignup},
		{method: http.MethodPost, pattern: "/auth/login", handler: (*Server).handleLogin},
		{method: http.MethodPost, pattern: "/books/new", requireAuth: true, handler: (*Server).handleCreateBook},
		{
			method:      http.MethodGet,
			pattern:     "/books",
			requireAuth: true,
			roles:       []domain.Role{domain.RoleUser, domain.RoleModerator, domain.RoleAdmin},
			limit:       listLimit,
			window:      listWindow,
			handler:     (*Server).handleListBooks,
		},
		{method: http.MethodGet, pattern: "/books/{id}", handler: (*Server).handleGetBook},
		{method: http.MethodPatch, pattern: "/books/change/{id}", handler: (*Server).handleUpdateBook},
		{method: http.MethodDelete, pattern: "/books/remove/{id}", handler: (*Server).handleDeleteBook},
		{method: http.MethodPut, pattern: "/books/upload/{id}", requireAuth: true, handler: (*Server).handleUploadImages},
	}
	for i := range routes {
		if routes[i].limit <= 0 {
			routes[i].limit = defaultLimit
			routes[i].window = defaultWindow
		}
		limiter, err := ratelimit.NewFixedWindowLimiter(
			cfg.Redis,
			"bookstack:ratelimit:"+routes[i].method+":"+routes[i].pattern,
			routes[i].limit,
			routes[i].window,
		)
		if err != nil {
			return nil, fmt.Errorf("init limiter for %s %s: %w", routes[i].method, routes[i].pattern, err)
		}
		s.limiters[routes[i].method+" "+routes[i].pattern] = limiter
		s.mux.Handle(routes[i].method+" "+routes[i].pattern, s.guard(routes[i]))
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s, nil
}

// Router returns the configured handler wrapped with ambient middleware.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog(s.mux))))
}

// guard enforces, in order: rate limit, authentication, role membership.
// Handlers behind it receive the caller identity explicitly.
func (s *Server) guard(rt route) http.Handler {
	limiter := s.limiters[rt.method+" "+rt.pattern]
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(util.ClientIP(r, s.trusted)) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rt.window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}

		var caller domain.User
		if rt.requireAuth {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			user, ok := s.app.UserFromToken(token)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			caller = user
		}

		if len(rt.roles) > 0 && !caller.HasAnyRole(rt.roles...) {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}

		rt.handler(s, w, r, caller)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}
