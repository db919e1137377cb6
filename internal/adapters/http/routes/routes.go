package routes

import (
	"time"

	"neurogen-backend/internal/adapters/ai"
	"neurogen-backend/internal/adapters/http/handlers"
	"neurogen-backend/internal/adapters/http/middleware"
	"neurogen-backend/internal/adapters/persistence/repositories"
	"neurogen-backend/internal/adapters/storage"
	"neurogen-backend/internal/config"
	"neurogen-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, blobs storage.BlobStore, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	caseRepo := repositories.NewCaseRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)

	// Model client shared by the synthesizer and the assistant
	modelClient := ai.NewClient(cfg.AI)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg)
	caseService := services.NewCaseService(caseRepo, blobs)
	analysisService := services.NewAnalysisService(analysisRepo, modelClient)
	assistantService := services.NewAssistantService(modelClient)
	statsService := services.NewStatsService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService)
	caseHandler := handlers.NewCaseHandler(caseService)
	analysisHandler := handlers.NewAnalysisHandler(analysisService, assistantService)
	dashboardHandler := handlers.NewDashboardHandler(statsService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Uploaded case images are served as static files
	app.Static("/uploads", cfg.Upload.Dir)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API group
	api := app.Group("/api")
	api.Get("/", healthHandler.APIInfo)

	// Auth routes
	authRoutes := api.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Case routes (authenticated)
	caseRoutes := api.Group("/cases")
	caseRoutes.Use(middleware.AuthMiddleware(cfg))
	setupCaseRoutes(caseRoutes, caseHandler)

	// Analysis routes (authenticated)
	analysisRoutes := api.Group("/analysis")
	analysisRoutes.Use(middleware.AuthMiddleware(cfg))
	setupAnalysisRoutes(analysisRoutes, analysisHandler)

	// Dashboard routes (authenticated)
	dashboardRoutes := api.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Get("/", dashboardHandler.GetMyDashboard)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Credentials never pass through shared caches
	router.Use(middleware.NoCacheHeaders())

	// Public routes, rate-limited against brute force
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
}

// setupCaseRoutes configures medical case routes. Role gates are
// enforced at the route AND inside the service.
func setupCaseRoutes(router fiber.Router, handler *handlers.CaseHandler) {
	router.Post("/", middleware.PatientOnly("只有患者可以创建病例"), handler.Create)
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)
	router.Post("/:id/messages", handler.SendMessage)
	router.Post("/:id/diagnosis", middleware.DoctorOnly("只有医生可以提交诊断"), handler.SubmitDiagnosis)
	router.Patch("/:id/read", handler.MarkRead)
}

// setupAnalysisRoutes configures report synthesis and assistant routes
func setupAnalysisRoutes(router fiber.Router, handler *handlers.AnalysisHandler) {
	// Model-backed endpoints carry a tighter rate limit
	router.Post("/multimodal", middleware.AnalysisRateLimiter(), handler.Multimodal)
	router.Post("/chat", middleware.AnalysisRateLimiter(), handler.Chat)

	// The derived report is stable per user; let clients cache it
	router.Get("/health-report/:user_id", middleware.PrivateCacheHeaders(5*time.Minute), handler.HealthReport)
	router.Get("/archive", handler.Archive)
}
