package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rwa-invest-backend/handlers"
	"rwa-invest-backend/middleware"
	"rwa-invest-backend/models"
	"rwa-invest-backend/services"
	"rwa-invest-backend/utils"
	"rwa-invest-backend/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024, // 64MB — document uploads
	})

	// 🔐 GLOBAL: only Gateway requests allowed (webhooks carry their own HMAC)
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.Issuer{},
		&models.Deal{},
		&models.Document{},
		&models.ComplianceAuditLog{},
		&models.EarlyAccessSubmission{},
		&models.Notification{},
		&models.Investment{},
		&models.Distribution{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	userService := services.NewUserService(db)
	webhookService := services.NewWebhookService(userService)
	complianceService := services.NewComplianceService(db, services.NewAuditRecorder(db))
	issuerService := services.NewIssuerService(db)
	dealService := services.NewDealService(db)
	documentService := services.NewDocumentService(db)
	notificationService := services.NewNotificationService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raiseWorker := workers.NewRaiseSyncWorker(db, 1*time.Minute)
	go raiseWorker.Start(ctx)

	dealService.StartLifecycleScheduler()

	handlers.SetupUserRoutes(app, userService, webhookService, notificationService)
	handlers.SetupComplianceRoutes(app, complianceService)
	handlers.SetupMarketplaceRoutes(app, issuerService, dealService, documentService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Raise reconciliation worker running (every 1m)")
	log.Println("✅ Deal lifecycle scheduler running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — webhooks verified via HMAC")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
