// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the composition root: every dependency is created and
// wired in New, and nothing below it knows about configuration.
//
//	config.Config ─► sqlite.DB ─────────────► Resolver ─► FavoritesService ─► AccountService
//	              ─► RedisCache (optional) ─► RAWG / GiantBomb / GameSpot clients
//	              ─► TokenService (optional)
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
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/gamehub/internal/auth"
	"github.com/sakif/gamehub/internal/catalog"
	"github.com/sakif/gamehub/internal/config"
	"github.com/sakif/gamehub/internal/handler"
	"github.com/sakif/gamehub/internal/middleware"
	sqliteRepo "github.com/sakif/gamehub/internal/repository/sqlite"
	"github.com/sakif/gamehub/internal/service"
)

// redisConnectTimeout bounds the startup ping to redis.
const redisConnectTimeout = 3 * time.Second

// Server owns the router and the resources that must be released on
// shutdown: the database and, when configured, the redis cache.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	cache  *catalog.RedisCache // nil when redis is not configured or unreachable
	tokens *auth.TokenService  // nil when JWT_SECRET is unset
}

// New opens the database, connects the optional cache and builds the
// router.
//
// Redis and the JWT secret are optional. Without redis the catalog clients
// run uncached; without a secret the signup, login and /api/me routes are
// not registered and every favorites request must name its accountId.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
		cache, err := catalog.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, catalog responses will not be cached",
				slog.String("addr", cfg.Redis.Addr),
				slog.String("error", err.Error()),
			)
		} else {
			s.cache = cache
		}
	}

	if cfg.Auth.JWTSecret != "" {
		tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("creating token service: %w", err)
		}
		s.tokens = tokens
	} else {
		logger.Warn("JWT_SECRET not set, authentication is disabled")
	}

	s.setupRoutes()
	return s, nil
}

// Handler returns the fully wired router. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes.
//
// ROUTES:
//
//	GET    /healthz
//	POST   /api/auth/signup               (auth enabled)
//	POST   /api/auth/login                (auth enabled)
//	POST   /api/auth/logout
//	GET    /api/me                        (auth enabled)
//	GET    /api/users/{id}
//	PATCH  /api/users/{id}
//	GET    /api/favorites                 ?accountId=
//	POST   /api/favorites
//	DELETE /api/favorites                 ?accountId=&gameId=
//	GET    /api/characters/favorites      ?accountId=
//	POST   /api/characters/favorites
//	DELETE /api/characters/favorites      ?accountId=&characterId=
//	GET    /api/characters/{id}
//	POST   /api/games
//	GET    /api/games/{id}
//	GET    /api/catalog/games             ?search=&page=
//	GET    /api/catalog/games/{rawgId}
//	GET    /api/catalog/characters        ?query=
//	GET    /api/catalog/news              ?limit=
//
// Middleware order matters: RequestID must run before Logger so the id is
// logged, and Recoverer sits inside Logger so a recovered panic is logged
// as a 500.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	if s.tokens != nil {
		s.router.Use(auth.OptionalAuth(s.tokens))
	}

	// === Services ===
	resolver := service.NewResolver(s.db, s.db, s.logger)
	favorites := service.NewFavoritesService(s.db, s.db, s.db, s.db, resolver, s.logger)
	accounts := service.NewAccountService(s.db, favorites, s.tokens, auth.NewPasswordService(), s.logger)

	// === Catalog clients ===
	var cache catalog.Cache = catalog.NoCache{}
	var cachePinger handler.CachePinger
	if s.cache != nil {
		cache = s.cache
		cachePinger = s.cache
	}
	catalogOpts := func(apiKey string) catalog.Options {
		return catalog.Options{
			APIKey:   apiKey,
			Timeout:  s.config.Catalog.Timeout,
			Cache:    cache,
			CacheTTL: s.config.Redis.CacheTTL,
		}
	}
	rawg := catalog.NewRAWGClient(catalogOpts(s.config.Catalog.RAWGAPIKey), s.logger)
	giantBomb := catalog.NewGiantBombClient(catalogOpts(s.config.Catalog.GiantBombAPIKey), s.logger)
	gameSpot := catalog.NewGameSpotClient(catalogOpts(s.config.Catalog.GameSpotAPIKey), s.logger)

	// === Handlers ===
	healthHandler := handler.NewHealthHandler(s.db, cachePinger)
	favoritesHandler := handler.NewFavoritesHandler(favorites, s.logger)
	accountHandler := handler.NewAccountHandler(accounts, s.logger)
	tokenTTL := s.config.Auth.TokenTTL
	if s.tokens != nil {
		tokenTTL = s.tokens.TTL()
	}
	authHandler := handler.NewAuthHandler(accounts, tokenTTL, s.logger)
	collectibleHandler := handler.NewCollectibleHandler(resolver, s.logger)
	catalogHandler := handler.NewCatalogHandler(rawg, giantBomb, gameSpot, s.logger)

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		if s.tokens != nil {
			r.Post("/auth/signup", authHandler.HandleSignUp)
			r.Post("/auth/login", authHandler.HandleLogin)
			r.Get("/me", authHandler.HandleMe)
		}
		r.Post("/auth/logout", authHandler.HandleLogout)

		r.Get("/users/{id}", accountHandler.HandleGet)
		r.Patch("/users/{id}", accountHandler.HandleUpdate)

		r.Get("/favorites", favoritesHandler.HandleListGames)
		r.Post("/favorites", favoritesHandler.HandleAddGame)
		r.Delete("/favorites", favoritesHandler.HandleRemoveGame)

		r.Get("/characters/favorites", favoritesHandler.HandleListCharacters)
		r.Post("/characters/favorites", favoritesHandler.HandleAddCharacter)
		r.Delete("/characters/favorites", favoritesHandler.HandleRemoveCharacter)
		r.Get("/characters/{id}", collectibleHandler.HandleGetCharacter)

		r.Post("/games", collectibleHandler.HandleCreateGame)
		r.Get("/games/{id}", collectibleHandler.HandleGetGame)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/games", catalogHandler.HandleSearchGames)
			r.Get("/games/{rawgId}", catalogHandler.HandleGameDetails)
			r.Get("/characters", catalogHandler.HandleSearchCharacters)
			r.Get("/news", catalogHandler.HandleNews)
		})
	})
}

// Start runs the HTTP server until SIGINT or SIGTERM, then shuts down
// gracefully:
//  1. stop accepting new connections
//  2. wait up to ShutdownTimeout for in-flight requests
//  3. close redis and the database
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("database", s.config.Database.Path),
			slog.Bool("cache", s.cache != nil),
			slog.Bool("auth", s.tokens != nil),
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

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Close releases the cache and the database. Start calls it on the way
// out; callers that never Start must call it themselves. Errors are logged.
func (s *Server) Close() {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("closing redis", slog.String("error", err.Error()))
		}
	}
	if err := s.db.Close(); err != nil {
		s.logger.Warn("closing database", slog.String("error", err.Error()))
	}
}
