// Package server contains the HTTP handlers: the feed API, access-checked
// media, login flows and health probes.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"innercircle/internal/auth"
	"innercircle/internal/cache"
	"innercircle/internal/config"
	"innercircle/internal/database"
	"innercircle/internal/featureflags"
	"innercircle/internal/files"
	"innercircle/internal/middleware"
	"innercircle/internal/models"
	"innercircle/internal/repository"
	"innercircle/internal/service"
	"innercircle/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// loginProvider is the part of an OAuth provider the login flow needs.
type loginProvider interface {
	AuthCodeURL(state string) string
	Email(ctx context.Context, code string) (string, error)
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *session.Manager
	google         loginProvider
	resolver       files.Resolver
	store          *files.LocalStore
	featureFlags   *featureflags.Manager
	userService    *service.UserService
	circleService  *service.CircleService
	postService    *service.PostService
	visibility     *service.VisibilityResolver
	mediaChecker   *service.MediaAccessChecker
}

// Option customizes a Server built by NewServerWithDeps.
type Option func(*Server)

// WithGoogleProvider replaces the Google login provider.
func WithGoogleProvider(p loginProvider) Option {
	return func(s *Server) { s.google = p }
}

// WithResolver replaces the media URL resolver selected by FILES_BACKEND.
func WithResolver(r files.Resolver) Option {
	return func(s *Server) { s.resolver = r }
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
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts ...Option) (*Server, error) {
	sessions, err := session.NewManager(cfg.SessionSecret, cfg.SessionTTL(), redisClient)
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("innercircle"),
		sessions:       sessions,
		store:          files.NewLocalStore(cfg.AssetsDir),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}
	for _, opt := range opts {
		opt(server)
	}

	if server.resolver == nil {
		resolver, err := files.NewResolver(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("files resolver: %w", err)
		}
		server.resolver = resolver
	}

	if server.google == nil && cfg.GoogleLoginEnabled() {
		google, err := auth.NewGoogle(auth.GoogleOptions{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.BaseURL + googleCallbackPath(cfg),
		})
		if err != nil {
			return nil, fmt.Errorf("google login: %w", err)
		}
		server.google = google
	}

	for _, name := range server.featureFlags.Invalid() {
		middleware.Logger.Warn("ignoring malformed feature flag", slog.String("flag", name))
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	circleRepo := repository.NewCircleRepository(db)

	server.userService = service.NewUserService(userRepo)
	server.circleService = service.NewCircleService(circleRepo)
	server.postService = service.NewPostService(postRepo, circleRepo)
	server.visibility = service.NewVisibilityResolver(
		postRepo,
		repository.NewCommentRepository(db),
		repository.NewAttachmentRepository(db),
		server.resolver,
	)
	server.mediaChecker = service.NewMediaAccessChecker(repository.NewMediaRepository(db))

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers. Media is embedded cross-origin by the client bundle.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (300 requests per minute per IP). A feed page
	// fans out into many media requests.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
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

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Login flows
	loginLimit := middleware.RateLimit(s.redis, 20, 5*time.Minute, "login")
	app.Get("/login", loginLimit, s.Login)
	if s.config.DevTrustLogin {
		app.Get("/login/trust", loginLimit, s.ListTrustUsers)
		app.Get("/login/trust/:id", loginLimit, s.TrustLogin)
	}
	if s.google != nil {
		app.Get("/login/google", loginLimit, s.GoogleLogin)
		app.Get(googleCallbackPath(s.config), loginLimit, s.GoogleCallback)
	}
	app.Get("/logout", s.Logout)

	requireSession := middleware.SessionRequired(s.sessions)

	api := app.Group("/api/v1", requireSession)
	api.Get("/posts", s.GetPosts)
	api.Post("/posts", s.FeatureRequired(featureflags.PostAuthoring), middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	api.Get("/circles", s.FeatureRequired(featureflags.CirclePicker), s.GetCircles)
	api.Get("/features", s.GetFeatureFlags)

	app.Get(files.AssetsPrefix+"*", requireSession, s.ServeAsset)

	if s.config.StaticDir != "" {
		app.Static("/", s.config.StaticDir)
		// Client-side routes fall back to the bundle's index.
		app.Get("/*", func(c *fiber.Ctx) error {
			return c.SendFile(filepath.Join(s.config.StaticDir, "index.html"))
		})
	}
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
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

	// Redis only backs revocation and rate limits, both of which fail open.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
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

// FeatureRequired hides a route with 404 while the flag is off for the
// current user. Must be placed after SessionRequired.
func (s *Server) FeatureRequired(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := middleware.CurrentUserID(c)
		if !s.featureFlags.Enabled(flag, userID) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				&models.AppError{Code: "NOT_FOUND", Message: "Not found"})
		}
		return c.Next()
	}
}

func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "innercircle",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, &models.AppError{Message: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.newApp()

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and waits for in-flight ones. The
// database and Redis belong to the runtime and are closed there.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	middleware.Logger.Info("server shutdown complete")
	return nil
}
