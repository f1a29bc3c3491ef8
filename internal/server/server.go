// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "conduit/docs" // swagger docs
	"conduit/internal/auth"
	"conduit/internal/cache"
	"conduit/internal/config"
	"conduit/internal/database"
	"conduit/internal/featureflags"
	"conduit/internal/middleware"
	"conduit/internal/models"
	"conduit/internal/notifications"
	"conduit/internal/repository"
	"conduit/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	tokens          *auth.TokenIssuer
	notifier        *notifications.Notifier
	featureFlags    *featureflags.Manager
	userService     *service.UserService
	profileService  *service.ProfileService
	articleService  *service.ArticleService
	favoriteService *service.FavoriteService
	tagService      *service.TagService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil Redis client disables realtime events; caching follows the cache
// package's own client.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server: config and database are required")
	}

	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	followRepo := repository.NewFollowRepository(db)
	tagRepo := repository.NewTagRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("conduit-api"),
		tokens:         auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL()),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}

	events := &realtimeEvents{notifier: s.notifier, flags: s.featureFlags}

	s.userService = service.NewUserService(userRepo)
	s.profileService = service.NewProfileService(userRepo, followRepo, events)
	s.articleService = service.NewArticleService(articleRepo, userRepo, favoriteRepo, followRepo, tagRepo, nil, events)
	s.favoriteService = service.NewFavoriteService(articleRepo, favoriteRepo, followRepo, events)
	s.tagService = service.NewTagService(tagRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Server span, then trace IDs into locals
	for _, h := range middleware.Tracing() {
		app.Use(h)
	}

	// Propagate request, trace and user IDs to the logger
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so throttled responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:4200,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	app.Use(middleware.RequestTimeout(s.config.RequestTimeout()))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Conduit API Metrics Dashboard",
	}))

	api.Get("/swagger/*", swagger.HandlerDefault)

	// Users and authentication
	api.Post("/users", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "register"), s.Register)
	api.Post("/users/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	api.Get("/user", s.AuthRequired(), s.GetCurrentUser)
	api.Put("/user", s.AuthRequired(), s.UpdateCurrentUser)

	// Profiles
	profiles := api.Group("/profiles")
	profiles.Get("/:username", s.GetProfile)
	profiles.Post("/:username/follow", s.AuthRequired(), s.FollowUser)
	profiles.Delete("/:username/follow", s.AuthRequired(), s.UnfollowUser)

	// Articles: /feed must be registered before /:slug
	articles := api.Group("/articles")
	articles.Get("/", s.ListArticles)
	articles.Get("/feed", s.AuthRequired(), s.ListFeed)
	articles.Post("/", s.AuthRequired(), middleware.RateLimit(
		s.redis, 10, time.Minute, "create_article"), s.CreateArticle)
	articles.Post("/:slug/favorite", s.AuthRequired(), s.FavoriteArticle)
	articles.Delete("/:slug/favorite", s.AuthRequired(), s.UnfavoriteArticle)
	articles.Get("/:slug", s.GetArticle)
	articles.Put("/:slug", s.AuthRequired(), s.UpdateArticle)
	articles.Delete("/:slug", s.AuthRequired(), s.DeleteArticle)

	// Tags
	api.Get("/tags", s.GetTags)
	api.Get("/tags/list", s.GetTags)

	api.Get("/feature-flags", s.AuthRequired(), s.GetFeatureFlags)
}

// NewApp builds a Fiber app with the full middleware chain and every route.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Conduit API",
		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  s.config.RequestTimeout(),
		WriteTimeout: s.config.RequestTimeout(),
		ErrorHandler: errorHandler,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler renders errors that escaped the handlers, keeping fiber's
// own status codes (unknown route, bad method).
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: without
// it caching and realtime events are off but the API still serves.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus == "unhealthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired rejects requests without a valid bearer token and stores the
// caller's ID in c.Locals("userID").
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, err := s.tokens.Parse(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		c.Locals("userID", userID)
		// Sync to UserContext for logging and downstream services
		c.SetUserContext(middleware.WithUserID(c.UserContext(), userID))

		return c.Next()
	}
}

// optionalUserID attempts to extract userID from the Authorization header but does not enforce it.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	tokenString, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return 0, false
	}
	userID, err := s.tokens.Parse(tokenString)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// viewer resolves the caller of a public route. A missing or invalid token
// makes the caller anonymous.
func (s *Server) viewer(c *fiber.Ctx) models.Viewer {
	if userID, ok := c.Locals("userID").(uint); ok {
		return models.AuthenticatedAs(userID)
	}
	userID, ok := s.optionalUserID(c)
	if !ok {
		return models.Anonymous()
	}
	c.SetUserContext(middleware.WithUserID(c.UserContext(), userID))
	return models.AuthenticatedAs(userID)
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}
	if replica := database.GetReadDB(); replica != nil {
		if sqlDB, err := replica.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
