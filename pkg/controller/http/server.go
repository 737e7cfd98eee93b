package http

import (
	"context"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/modkit/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr         string
	allowedHosts []string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithAllowedHosts accepts Host and Origin names besides loopback ones
func WithAllowedHosts(hosts ...string) Option {
	return func(c *config) {
		c.allowedHosts = append(c.allowedHosts, hosts...)
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	modUC interfaces.ModFilesetUseCase,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr: "localhost:8080",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)
	router.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	router.Use(LoopbackOnly(cfg.allowedHosts...))

	router.Get("/health", handleHealth)

	handler := NewModFilesetHandler(modUC)
	router.Get("/runtime/status", handler.RuntimeStatus)

	router.Group(func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		r.Post("/runtime/install", handler.InstallRuntime)
		r.Post("/runtime/remove", handler.RemoveRuntime)
		r.Post("/archives/extract", handler.ExtractArchive)
		r.Post("/downloads", handler.Download)
		r.Post("/paths/delete", handler.DeletePath)
		r.Post("/launch", handler.Launch)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
