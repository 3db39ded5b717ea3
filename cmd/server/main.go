package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfryer1193/blogwire/blog/application"
	"github.com/dfryer1193/blogwire/blog/persistence"
	"github.com/dfryer1193/blogwire/internal/auth"
	"github.com/dfryer1193/blogwire/internal/cache"
	"github.com/dfryer1193/blogwire/internal/config"
	"github.com/dfryer1193/blogwire/internal/logger"
	"github.com/dfryer1193/blogwire/internal/middleware"
	"github.com/dfryer1193/blogwire/internal/realtime"
	"github.com/dfryer1193/blogwire/internal/rest"
	"github.com/dfryer1193/blogwire/shared/aiclient"
	"github.com/dfryer1193/blogwire/shared/db/sqlite"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Setup(cfg.LogLevel)

	// Initialize dependencies
	database := sqlite.NewSQLiteDB(sqlite.NewSQLiteConfig(cfg.SQLitePath))
	if err := database.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	postCache := buildCache(cfg)
	generator := buildGenerator(cfg)

	hub := realtime.NewHub()
	postService := application.NewPostService(
		persistence.NewPostRepository(database.DB()),
		generator,
		realtime.NewBroadcaster(hub),
		cfg.Generator.Persist,
	)
	authService := auth.NewService(
		persistence.NewUserRepository(database.DB()),
		persistence.NewSessionRepository(database.DB()),
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		middleware.LoggingMiddleware(),
		gin.CustomRecovery(middleware.HandlePanics()),
		middleware.CORS(cfg.AllowedOrigin),
	)

	rest.NewApi(
		router,
		rest.NewPostHandler(postService, postCache),
		rest.NewAuthHandler(authService),
		authService,
		hub,
		cfg.AllowedOrigin,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}

// buildCache wires the redis read cache when an address is configured. A nil
// cache disables caching without any conditionals at the call sites.
func buildCache(cfg *config.Config) *cache.PostCache {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	postCache := cache.NewPostCache(client, cfg.CacheTTL)
	if err := postCache.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, continuing without cache")
		return nil
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("Post cache enabled")
	return postCache
}

// buildGenerator wires the draft generator when an API key is configured.
// Without one, generation requests fail with an upstream error.
func buildGenerator(cfg *config.Config) application.DraftGenerator {
	if cfg.Generator.APIKey == "" {
		log.Info().Msg("No generator API key configured, draft generation disabled")
		return nil
	}
	return aiclient.NewClient(cfg.Generator.BaseURL, cfg.Generator.APIKey, cfg.Generator.Model)
}
