package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"accounts/backend/internal/config"
	authusecase "accounts/backend/internal/usecase/auth"
	"accounts/backend/internal/usecase/rules"

	"github.com/sirupsen/logrus"
)

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer  *http.Server
	router      *http.ServeMux
	authService *authusecase.Service
	rules       *rules.Registry
	cookieName  string
	cookieTTL   time.Duration
	log         *logrus.Logger
	addr        string
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(cfg config.Config, authService *authusecase.Service, ruleRegistry *rules.Registry, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}
	mux := http.NewServeMux()
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	handler := withLogging(log, withCORS(mux, cfg.AllowedOrigins))

	srv := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeoutSec) * time.Second,
		},
		router:      mux,
		authService: authService,
		rules:       ruleRegistry,
		cookieName:  cfg.SessionCookie,
		cookieTTL:   cfg.JWTExpiry,
		log:         log,
		addr:        addr,
	}
	srv.registerRoutes()
	return srv
}

// Start bootstraps the HTTP server on the configured address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the underlying ServeMux, mainly for tests.
func (s *Server) Router() *http.ServeMux {
	return s.router
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
