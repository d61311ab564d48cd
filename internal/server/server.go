// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: New opens the database and builds every
// service and handler, setupRoutes maps URLs to handlers, and Start runs
// the server until SIGINT/SIGTERM.
//
//	sqlite.DB → AuthService / FoodService / SuggestionService → handlers
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/foodlist/internal/auth"
	"github.com/sakif/foodlist/internal/config"
	"github.com/sakif/foodlist/internal/handler"
	"github.com/sakif/foodlist/internal/middleware"
	sqliteRepo "github.com/sakif/foodlist/internal/repository/sqlite"
	"github.com/sakif/foodlist/internal/service"
)

// Server represents the HTTP server and all its dependencies.
// It owns the database connection and closes it on shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database (running migrations) and wires the application.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on shutdown.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTES:
//
//	GET  /healthz                  → liveness + DB ping
//	POST /auth/register            → create account
//	POST /auth/login               → set session cookie
//	POST /auth/logout              → clear session cookie
//	GET  /api/me                   → current user              [auth]
//	GET  /api/lists                → own lists, newest first   [auth]
//	GET  /api/lists/{listId}       → one own list              [auth]
//	POST /api/create_list          → new list                  [auth]
//	GET  /api/my_lists             → own lists with items      [auth]
//	GET  /api/list_items/{listId}  → items of an own list      [auth]
//	POST /api/add_item             → append item               [auth]
//	POST /api/toggle_item          → set checked flag          [auth]
//	POST /api/delete_item          → remove item               [auth]
//	POST /api/edit_item            → rename item               [auth]
//	POST /api/edit_list            → rename list               [auth]
//	POST /api/delete_list          → remove list and items     [auth]
//	GET  /api/random_pick          → random catalog food       [auth]
//
// Middleware order: RequestID first so the logger can print it, Recoverer
// inside the logger so a panic is still logged as a 500.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords, err := auth.NewPasswordService(s.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("creating password service: %w", err)
	}

	// s.db implements every repository interface; each service only sees
	// the one it needs.
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	foodService := service.NewFoodService(s.db, s.logger)
	suggestionService := service.NewSuggestionService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, handler.CookieConfig{
		MaxAge: tokens.TTL(),
		Secure: s.config.CookieSecure,
	}, s.logger)
	foodHandler := handler.NewFoodHandler(foodService, s.logger)
	suggestionHandler := handler.NewSuggestionHandler(suggestionService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)

		r.Get("/lists", foodHandler.HandleLists)
		r.Get("/lists/{listId}", foodHandler.HandleGetList)
		r.Post("/create_list", foodHandler.HandleCreateList)
		r.Get("/my_lists", foodHandler.HandleMyLists)
		r.Post("/edit_list", foodHandler.HandleEditList)
		r.Post("/delete_list", foodHandler.HandleDeleteList)

		r.Get("/list_items/{listId}", foodHandler.HandleListItems)
		r.Post("/add_item", foodHandler.HandleAddItem)
		r.Post("/toggle_item", foodHandler.HandleToggleItem)
		r.Post("/edit_item", foodHandler.HandleEditItem)
		r.Post("/delete_item", foodHandler.HandleDeleteItem)

		r.Get("/random_pick", suggestionHandler.HandleRandomPick)
	})

	return nil
}

// Start starts the HTTP server and blocks until it stops.
//
// On SIGINT/SIGTERM it stops accepting connections, waits up to
// ShutdownTimeout for in-flight requests, then closes the database.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully", slog.Duration("timeout", s.config.ShutdownTimeout))
	}

	return nil
}

