// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"time"

	"medley/internal/cache"
	"medley/internal/config"
	"medley/internal/database"
	"medley/internal/middleware"
	"medley/internal/models"
	"medley/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config      *config.Config
	dbh         *database.Handle
	cache       *cache.Cache
	userRepo    repository.UserRepository
	mediaRepo   repository.MediaRepository
	commentRepo repository.CommentRepository
}

// NewServer creates a new server instance with all dependencies. The
// database connects in the background: a down database never blocks the
// listener, data routes answer 503 until the handle is live.
func NewServer(cfg *config.Config) *Server {
	dbh := database.Open(cfg)
	return newServer(cfg, dbh, cache.New(cfg.RedisURL))
}

// NewServerWith builds a server over an existing database handle and cache.
// Used by tests.
func NewServerWith(cfg *config.Config, dbh *database.Handle, ch *cache.Cache) *Server {
	return newServer(cfg, dbh, ch)
}

func newServer(cfg *config.Config, dbh *database.Handle, ch *cache.Cache) *Server {
	return &Server{
		config:      cfg,
		dbh:         dbh,
		cache:       ch,
		userRepo:    repository.NewUserRepository(dbh),
		mediaRepo:   repository.NewMediaRepository(dbh),
		commentRepo: repository.NewCommentRepository(dbh),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return s.config.IsTest()
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

	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application.
// Authorization is declared here, per route, through the two RequireAuth
// policies; handlers never re-check roles.
func (s *Server) SetupRoutes(app *fiber.App) {
	anyUser := middleware.RequireAuth(s.config.JWTSecret)
	adminOnly := middleware.RequireAuth(s.config.JWTSecret, models.RoleAdmin)
	rdb := s.cache.Client()

	api := app.Group("/api")

	// Health check and runtime metrics
	api.Get("/", s.HealthCheck)
	api.Get("/metrics", monitor.New(monitor.Config{Title: "Medley Metrics"}))

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(rdb, 3, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", middleware.RateLimit(rdb, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", s.Logout)
	authGroup.Get("/me", anyUser, s.Me)

	// Public media browsing
	api.Get("/media", s.ListMedia)
	api.Get("/media/:id/comments", s.ListComments)

	// Authenticated user actions
	api.Post("/media/:id/like", anyUser, s.ToggleLike)
	api.Post("/media/:id/comments", anyUser, s.CreateComment)
	api.Get("/user/likes", anyUser, s.ListUserLikes)

	// Admin: moderation and maintenance
	admin := api.Group("/admin", adminOnly)
	admin.Get("/media", s.AdminListMedia)
	admin.Post("/media", s.CreateMedia)
	admin.Delete("/media/:id", s.DeleteMedia)
	admin.Post("/remove-samples", s.RemoveSamples)
	admin.Post("/remove-duplicates", s.RemoveDuplicates)
	admin.Post("/clear-all", s.ClearAllMedia)

	// Admin: user management
	admin.Get("/users", s.ListUsers)
	admin.Delete("/users/:id", s.DeleteUser)
	admin.Post("/users/:id/password", s.RevealCredential)
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if db, err := s.dbh.Get(); err != nil {
		dbStatus = "unavailable"
	} else if sqlDB, err := db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if rdb := s.cache.Client(); rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Medley",
		"version": "1.0.0",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Medley API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.dbh.Close(); err != nil {
		log.Printf("error closing sql DB: %v", err)
	}
	if err := s.cache.Close(); err != nil {
		log.Printf("error closing redis: %v", err)
	}
	log.Println("Server shutdown complete")
	return nil
}
