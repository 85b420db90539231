package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"gatherly/internal/config"
	"gatherly/internal/database"
	"gatherly/internal/middleware"
	"gatherly/internal/observability"
	"gatherly/internal/repository"
	"gatherly/internal/service"
	"gatherly/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config           *config.Config
	db               *mongo.Database
	redis            *redis.Client
	promMiddleware   *fiberprometheus.FiberPrometheus
	sessions         *session.Store
	userRepo         repository.UserRepository
	eventRepo        repository.EventRepository
	typeRepo         repository.EventTypeRepository
	authService      *service.AuthService
	eventService     *service.EventService
	favouriteService *service.FavouriteService
	tracingShutdown  func(context.Context) error
}

// NewServer creates a new server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("index bootstrap failed: %w", err)
	}

	redisClient, err := session.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	tracingShutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "gatherly",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampler,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	typeRepo := repository.NewEventTypeRepository(db)

	server := &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  fiberprometheus.New("gatherly"),
		sessions:        session.NewStore(redisClient, cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour),
		userRepo:        userRepo,
		eventRepo:       eventRepo,
		typeRepo:        typeRepo,
		tracingShutdown: tracingShutdown,
	}
	server.authService = service.NewAuthService(userRepo)
	server.eventService = service.NewEventService(eventRepo, typeRepo, userRepo)
	server.favouriteService = service.NewFavouriteService(userRepo, eventRepo)

	return server, nil
}

// SessionLoader reads the session once at the start of the request and
// stashes it in request locals; handlers receive it from there and never
// touch a global.
func (s *Server) SessionLoader() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := s.sessions.Get(c)
		if err != nil {
			middleware.Logger.ErrorContext(c.UserContext(), "session load failed",
				"error", err.Error())
		}
		if sess != nil {
			c.Locals("session", sess)
			c.Locals("sessionUser", sess.User)
		}
		return c.Next()
	}
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Session is read once here; everything downstream sees it in locals.
	app.Use(s.SessionLoader())

	// Propagate request ID and session user into the request context
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (120 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        120,
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
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Gatherly Metrics Dashboard",
	}))

	// Event catalog
	app.Get("/", s.ListEvents)
	app.Get("/events", s.ListEvents)
	app.Post("/search", middleware.RateLimit(
		s.redis, 20, time.Minute, "search"), s.SearchEvents)
	app.Get("/view_event/:id", s.ViewEvent)
	app.Get("/add_event", s.AddEventForm)
	app.Post("/add_event", s.AddEvent)
	app.Get("/edit_event/:id", s.EditEventForm)
	app.Post("/edit_event/:id", s.EditEvent)
	app.Get("/delete_event/:id", s.DeleteEvent)

	// Auth
	app.Get("/register", s.RegisterForm)
	app.Post("/register", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "register"), s.Register)
	app.Get("/login", s.LoginForm)
	app.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Get("/logout", s.Logout)

	// Profile and favourites
	app.Get("/profile/:username", s.Profile)
	app.Post("/profile/:username", s.Profile)
	app.Get("/add_favourite/:id", s.AddFavourite)
	app.Post("/add_favourite/:id", s.AddFavourite)
	app.Get("/remove_favourite/:id", s.RemoveFavourite)
	app.Post("/remove_favourite/:id", s.RemoveFavourite)
}

// LivenessCheck reports whether the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadinessCheck reports whether the stores are reachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded", "mongo": err.Error(),
		})
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded", "redis": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// Shutdown gracefully shuts down the server's store connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.tracingShutdown != nil {
		if err := s.tracingShutdown(ctx); err != nil {
			log.Printf("error shutting down tracing: %v", err)
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("error closing redis client: %v", err)
		}
	}

	if s.db != nil {
		if err := s.db.Client().Disconnect(ctx); err != nil {
			return err
		}
	}
	return nil
}
