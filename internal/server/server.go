// Package server wires the chi router, middleware, and handlers into the
// back-office HTTP server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tiendify/tiendify/internal/auth"
	"github.com/tiendify/tiendify/internal/handler"
	"github.com/tiendify/tiendify/internal/idp"
	"github.com/tiendify/tiendify/internal/server/middleware"
	"github.com/tiendify/tiendify/internal/service"
	"github.com/tiendify/tiendify/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	AuthRatePerMin  int
	Version         string
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		AuthRatePerMin:  30,
		Version:         "dev",
	}
}

// Server is the top-level HTTP server. It owns the chi router, the shop
// store, the access gate, and the identity-provider client.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *store.Store
	gate       *auth.Gate
	idp        *idp.Client
	keys       *service.SecretKeys
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, st *store.Store, gate *auth.Gate, idpClient *idp.Client, keys *service.SecretKeys, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		gate:   gate,
		idp:    idpClient,
		keys:   keys,
		logger: logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))

	authHandler := handler.NewAuthHandler(s.idp, s.store)
	keyHandler := handler.NewSecretKeyHandler(s.keys)
	productHandler := handler.NewProductHandler(s.store)
	categoryHandler := handler.NewCategoryHandler(s.store)
	customerHandler := handler.NewCustomerHandler(s.store)
	orderHandler := handler.NewOrderHandler(s.store)

	// --- Health checks and API docs (no auth required) ---
	r.Get("/health", s.handleHealth)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/openapi.json", handler.NewOpenAPIHandler(s.cfg.Version).ServeSpec)

	// --- Public auth flow ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(s.cfg.AuthRatePerMin))
		r.Get("/auth/login", authHandler.Login)
		r.Post("/auth/authorize", authHandler.Authorize)
	})

	// --- API routes ---
	r.Route("/api/v1", func(r chi.Router) {

		// Session-only surface: the logged-in human's own session and the
		// credential management behind the admin panel.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(s.gate))

			r.Get("/auth/me", authHandler.Me)
			r.Get("/auth/identity", authHandler.Identity)
			r.Post("/auth/logout", authHandler.Logout)

			r.Get("/auth/secret-keys", keyHandler.List)
			r.Post("/auth/secret-keys", keyHandler.Create)
			r.Delete("/auth/secret-keys/{keyID}", keyHandler.Delete)
		})

		// Shop surface: reachable by a logged-in human or by an automated
		// client holding a secret key.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.gate))

			r.Get("/products", productHandler.List)
			r.Post("/products", productHandler.Create)
			r.Get("/products/{productID}", productHandler.Get)
			r.Put("/products/{productID}", productHandler.Update)
			r.Delete("/products/{productID}", productHandler.Delete)
			r.Patch("/products/{productID}/visibility", productHandler.SetVisibility)
			r.Post("/products/{productID}/mediafiles", productHandler.AddMediafile)
			r.Delete("/mediafiles/{mediafileID}", productHandler.DeleteMediafile)

			r.Get("/categories", categoryHandler.List)
			r.Post("/categories", categoryHandler.Create)
			r.Delete("/categories/{categorySlug}", categoryHandler.Delete)

			r.Get("/customers", customerHandler.List)

			r.Get("/orders", orderHandler.List)
			r.Get("/orders/{orderID}", orderHandler.Get)
			r.Patch("/orders/{orderID}/cancel", orderHandler.Cancel)
		})
	})

	s.router = r
}

// handleHealth is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. Returns 200 when the store is
// reachable, 503 otherwise.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"degraded","checks":{"database":"error"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","checks":{"database":"ok"}}`))
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before returning.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
