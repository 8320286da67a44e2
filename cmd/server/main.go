package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/thumbdeck/account-server-go/internal/config"
	"github.com/thumbdeck/account-server-go/internal/database"
	"github.com/thumbdeck/account-server-go/internal/handler"
	"github.com/thumbdeck/account-server-go/internal/jobs"
	"github.com/thumbdeck/account-server-go/internal/middleware"
	"github.com/thumbdeck/account-server-go/internal/redis"
	"github.com/thumbdeck/account-server-go/internal/repository"
	"github.com/thumbdeck/account-server-go/internal/service"
	"github.com/thumbdeck/account-server-go/internal/token"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	userRepo := repository.NewUserRepository(db.DB)
	thumbnailRepo := repository.NewThumbnailRepository(db.DB)

	tokenService := token.NewService(cfg.JWTSecret, cfg.SessionTTL())
	blacklist := token.NewBlacklist(redisClient)

	authService := service.NewAuthService(userRepo, tokenService, blacklist, cfg.BaseURL(), cfg.ResetTTL())
	thumbnailService := service.NewThumbnailService(db, thumbnailRepo, cfg.UploadDir)

	authMiddleware := middleware.NewAuthMiddleware(tokenService, blacklist)
	rateLimitMiddleware := middleware.NewRedisRateLimitMiddleware(redisClient.Client)
	loginLimiter := middleware.NewLoginRateLimiter()
	corsMiddleware := middleware.NewCORSMiddleware(cfg.Origins())
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	uploadBodyLimitMiddleware := middleware.NewBodyLimitMiddleware(config.MaxUploadSize)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	authHandler := handler.NewAuthHandler(authService, loginLimiter)
	thumbnailHandler := handler.NewThumbnailHandler(thumbnailService)
	uploadsHandler := handler.NewUploadsHandler(cfg.UploadDir)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(corsMiddleware.Handler)
	r.Use(securityHeadersMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(bodyLimitMiddleware.Handler)
		r.Mount("/", authHandler.Routes())
	})

	r.Route("/api/thumbnail", func(r chi.Router) {
		r.Use(uploadBodyLimitMiddleware.Handler)
		r.Use(authMiddleware.Handler)
		r.Use(rateLimitMiddleware.Handler)
		r.Mount("/", thumbnailHandler.Routes())
	})

	r.Get("/uploads/*", uploadsHandler.ServeHTTP)

	cleanupJob := jobs.NewCleanupJob(userRepo, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
