package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"neurogen-backend/internal/adapters/http/middleware"
	"neurogen-backend/internal/adapters/http/routes"
	"neurogen-backend/internal/adapters/persistence/models"
	"neurogen-backend/internal/adapters/persistence/repositories"
	"neurogen-backend/internal/adapters/storage"
	"neurogen-backend/internal/config"
	"neurogen-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// @title NeuroGen API
// @version 1.0
// @description 脑科学多模态分析平台 NeuroGen v1.0 API

// @contact.name API Support
// @contact.email support@neurogen.cn

// @host api.neurogen.cn
// @BasePath /api
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed demo accounts and the sample case
	if cfg.SeedDemo {
		if err := config.SeedDemoData(db); err != nil {
			log.Printf("⚠️ Warning: Failed to seed demo data: %v", err)
		}
	}

	// Blob store for uploaded case images
	blobs, err := storage.NewLocalStore(cfg.Upload)
	if err != nil {
		log.Fatalf("❌ Failed to initialize blob store: %v", err)
	}

	// Start the pending-case digest scheduler (08:30 daily)
	reminderService := services.NewReminderService(
		repositories.NewCaseRepository(db),
		repositories.NewUserRepository(db),
	)
	if err := reminderService.Start(); err != nil {
		log.Fatalf("❌ Failed to start reminder service: %v", err)
	}
	defer reminderService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "NeuroGen API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    32 * 1024 * 1024, // medical image uploads
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, blobs, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
