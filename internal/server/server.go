// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fittrack/internal/config"
	"fittrack/internal/database"
	"fittrack/internal/middleware"
	"fittrack/internal/models"
	"fittrack/internal/repository"
	"fittrack/internal/session"
	"fittrack/internal/tracker"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	sessions        *session.Registry
	promMiddleware  *fiberprometheus.FiberPrometheus
	userRepo        repository.UserRepository
	goalRepo        repository.GoalRepository
	catalogRepo     repository.CatalogRepository
	calorieTracker  *tracker.Service
	progressTracker *tracker.Service
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Initialize Redis
	session.InitRedis(cfg.RedisURL)
	redisClient := session.GetClient()

	return NewServerWithDeps(cfg, db, redisClient), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	// Initialize Prometheus metrics
	prom := middleware.InitMetrics("fittrack-api")

	return &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		sessions:        session.NewRegistry(redisClient),
		promMiddleware:  prom,
		userRepo:        userRepo,
		goalRepo:        goalRepo,
		catalogRepo:     catalogRepo,
		calorieTracker:  tracker.NewService(goalRepo, tracker.Calories),
		progressTracker: tracker.NewService(goalRepo, tracker.Progress),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and username
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
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

	// Auth routes sit at the root, matching the public API contract
	app.Post("/registration", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "registration"), s.Register)
	app.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Post("/logout", s.AuthRequired(), s.Logout)

	// Calorie tracker routes
	calories := app.Group("/calories", s.AuthRequired())
	calories.Post("/goal", s.CreateCalorieGoal)
	calories.Post("/", s.LogCalories)
	calories.Get("/progress", s.ListCalorieGoals)
	calories.Get("/", s.GetCaloriesByDate)
	calories.Delete("/goals", s.DeleteCalorieGoal)
	calories.Delete("/", s.DeleteCaloriesByDate)

	// Progress tracker routes
	progress := app.Group("/progress", s.AuthRequired())
	progress.Post("/goal", s.CreateProgressGoal)
	progress.Post("/", s.LogProgress)
	progress.Get("/all", s.ListProgressGoals)
	progress.Get("/", s.GetProgressByDate)
	progress.Delete("/goal/:goalId", s.DeleteProgressGoalByID)
	progress.Delete("/", s.DeleteProgressByDate)

	// Dashboard routes
	dashboard := app.Group("/dashboard", s.AuthRequired())
	dashboard.Get("/calories", s.DashboardCalories)
	dashboard.Get("/progress", s.DashboardProgress)

	// Workout catalog routes
	workouts := app.Group("/workouts", s.AuthRequired())
	workouts.Get("/exercises/:bodyPart", s.GetExercisesByBodyPart)

	// Admin routes
	admin := app.Group("/admin", s.AuthRequired(), s.AdminRequired())
	admin.Post("/exercises", s.AddExercise)
	admin.Put("/exercises/:exerciseId", s.EditExercise)
	admin.Delete("/exercises/:exerciseId", s.DeleteExercise)
	admin.Get("/users", s.GetAllUsers)
	admin.Get("/loggedusers", s.GetLoggedInUsers)
	admin.Put("/users/:userId", s.UpdateUser)
	admin.Delete("/users/:userId", s.DeleteUser)
}

// AuthRequired returns the authentication middleware. A token is accepted
// only if it verifies cryptographically AND is still a member of the
// owner's server-side session, so logged-out tokens are rejected before
// their expiry.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Bearer token is missing"))
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has expired"))
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token"))
		}

		username, ok := claims["username"].(string)
		if !ok || username == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token"))
		}

		// Structurally valid but logged out (or never issued through login).
		active, err := s.sessions.HasToken(c.Context(), username, tokenString)
		if err != nil || !active {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token"))
		}

		c.Locals("username", username)
		if role, roleOk := claims["hasRole"].(string); roleOk {
			c.Locals("role", role)
		}
		c.Locals("token", tokenString)

		return c.Next()
	}
}

// AdminRequired gates a route on the admin role claim. Runs after
// AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != string(models.RoleAdmin) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unauthorized access"))
		}
		return c.Next()
	}
}

// currentUsername returns the authenticated username set by AuthRequired.
func (s *Server) currentUsername(c *fiber.Ctx) string {
	username, _ := c.Locals("username").(string)
	return username
}

// requireUser re-checks that the authenticated username still maps to a
// stored user. A deleted account with a live token gets a 400 here rather
// than acting on orphaned data.
func (s *Server) requireUser(c *fiber.Ctx) (string, error) {
	username := s.currentUsername(c)
	user, err := s.userRepo.GetByUsername(c.Context(), username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", models.NewValidationError("Invalid username")
	}
	return username, nil
}

// Shutdown releases the server's database and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return err
		}
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadinessCheck reports whether the backing stores are reachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	checks := fiber.Map{"database": "ok", "redis": "ok"}
	healthy := true

	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(c.Context()) != nil {
		checks["database"] = "unreachable"
		healthy = false
	}

	if s.redis == nil || s.redis.Ping(c.Context()).Err() != nil {
		checks["redis"] = "unreachable"
		healthy = false
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded", "checks": checks,
		})
	}
	return c.JSON(fiber.Map{"status": "ok", "checks": checks})
}
