package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/text-to-sql-chat/internal/api/handler"
	customMiddleware "github.com/Rrens/text-to-sql-chat/internal/api/middleware"
	"github.com/Rrens/text-to-sql-chat/internal/config"
	"github.com/Rrens/text-to-sql-chat/internal/domain"
	"github.com/Rrens/text-to-sql-chat/internal/repository/redis"
	"github.com/Rrens/text-to-sql-chat/internal/security"
	"github.com/Rrens/text-to-sql-chat/internal/service"
)

// NewRouter creates and configures the HTTP router. redisClient may be nil,
// in which case history is not cached and queries are not rate limited.
// runner may be nil, in which case only fixture rows are served.
func NewRouter(cfg *config.Config, history domain.HistoryRepository, redisClient *redis.Client, runner service.QueryRunner) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Server.WriteTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.WriteTimeout))
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn().Msg("No JWT secret configured, tokens will not survive a restart")
	}
	jwtManager := security.NewJWTManager(secret, cfg.Auth.AccessTokenTTL)

	authService, err := service.NewAuthService(cfg.Auth.Username, cfg.Auth.PasswordHash, jwtManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	var rateLimitMiddleware *customMiddleware.RateLimitMiddleware
	if redisClient != nil {
		history = redis.NewCachedHistory(history, redis.NewHistoryCache(redisClient, cfg.Redis.CacheTTL))
		rateLimiter := redis.NewRateLimiter(
			redisClient,
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		)
		rateLimitMiddleware = customMiddleware.NewRateLimitMiddleware(rateLimiter)
	}

	answers := service.NewAnswerBook(service.FixturesFromConfig(cfg.Fixtures), runner)
	chatService := service.NewChatService(history, answers)
	log.Info().Int("fixtures", len(cfg.Fixtures)).Msg("Answer book loaded")

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	sessionHandler := handler.NewSessionHandler(chatService)
	queryHandler := handler.NewQueryHandler(chatService)

	authMiddleware := customMiddleware.NewAuthMiddleware(authService)

	// Public routes
	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(chatService))
	r.Post("/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.OptionalAuth)
		if rateLimitMiddleware != nil {
			r.Use(rateLimitMiddleware.Limit)
		}
		r.Post("/query", queryHandler.Execute)
	})
	r.Post("/session/new", sessionHandler.Create)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/sessions", sessionHandler.List)
		r.Get("/session/{sessionID}/history", sessionHandler.History)
	})

	return r, nil
}
