package server

import (
	"net/http"
	"strings"

	"github.com/cloudcreds/storage-oauth-broker/internal/broker"
	"github.com/cloudcreds/storage-oauth-broker/internal/renderer"
	"github.com/rs/zerolog"
)

// Config is the subset of process configuration the HTTP layer needs.
type Config struct {
	Env              string // "DEV" enables verbose route/request logging
	AppName          string
	PrivacyPolicyURL string
	// WellKnownDir, if non-empty, is served verbatim under /.well-known/
	// from local disk — ACME challenge files are written there by a
	// separate, external ACME client, not by this process.
	WellKnownDir string
}

// Server adapts broker.Service's business logic to net/http: routing,
// middleware, and rendering. It holds no OAuth state of its own — that
// lives entirely in the wrapped broker.Service.
type Server struct {
	env          string
	mux          *http.ServeMux
	routes       []string
	fileServer   http.Handler
	wellKnownDir string
	broker       *broker.Service
	renderer     renderer.Renderer
	logger       zerolog.Logger

	appName          string
	privacyPolicyURL string
}

// New builds a Server wired to broker and renderer, then registers every
// route from spec.md §6's HTTP surface.
func New(cfg Config, brokerService *broker.Service, rend renderer.Renderer, logger zerolog.Logger) *Server {
	s := &Server{
		env:              cfg.Env,
		mux:              http.NewServeMux(),
		wellKnownDir:     cfg.WellKnownDir,
		broker:           brokerService,
		renderer:         rend,
		logger:           logger,
		appName:          cfg.AppName,
		privacyPolicyURL: cfg.PrivacyPolicyURL,
	}
	s.fileServer = FileServerHandler()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.logger.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			s.logger.Debug().Str("path", parts[0]).Msg("route registered")
		}
	}
}
