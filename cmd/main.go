package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tts-credit-bot/internal/auth"
	"tts-credit-bot/internal/config"
	"tts-credit-bot/internal/database"
	"tts-credit-bot/internal/handlers"
	"tts-credit-bot/internal/jobs"
	"tts-credit-bot/internal/logger"
	"tts-credit-bot/internal/services"
	"tts-credit-bot/internal/shortener"
	"tts-credit-bot/internal/state"
	"tts-credit-bot/internal/tts"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New()

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Initialize services
	ledger := services.NewLedgerService(db, appLog)
	settingsService := services.NewSettingsService(db, appLog)
	userService := services.NewUserService(db, appLog, ledger, settingsService)
	referralService := services.NewReferralService(db, appLog, ledger, settingsService)
	paymentService := services.NewPaymentService(db, appLog, ledger, settingsService)
	adminService := services.NewAdminService(db, appLog, ledger)
	reportService := services.NewReportService(db, appLog, cfg.App.ExportDir)

	linkService := services.NewRewardLinkService(db, appLog, ledger, settingsService, cfg.App.BotUsername,
		func(domain, apiKey string) services.URLShortener {
			return shortener.NewClient(domain, apiKey, cfg.Shortener.Timeout)
		})

	synthClient := tts.NewClient(cfg.TTS.APIURL, cfg.TTS.APIKey, cfg.TTS.Timeout)
	ttsService := services.NewTTSService(db, appLog, ledger, settingsService, synthClient)

	// Seed defaults and the first admin login
	if err := settingsService.SeedDefaults(); err != nil {
		log.Fatalf("Failed to seed settings: %v", err)
	}
	if err := adminService.EnsureAdmin(cfg.App.AdminUsername, cfg.App.AdminPassword); err != nil {
		log.Fatalf("Failed to bootstrap admin: %v", err)
	}

	// Conversation state for multi-step flows
	states := state.NewStore(15 * time.Minute)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(adminService)
	userHandler := handlers.NewUserHandler(userService, ledger, adminService)
	creditHandler := handlers.NewCreditHandler(adminService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, reportService)
	linkHandler := handlers.NewLinkHandler(linkService)
	referralHandler := handlers.NewReferralHandler(referralService, cfg.App.BotUsername)
	ttsHandler := handlers.NewTTSHandler(ttsService)
	reportHandler := handlers.NewReportHandler(reportService)
	settingsHandler := handlers.NewSettingsHandler(settingsService, adminService)
	healthHandler := handlers.NewHealthHandler(db, userService)

	// Start maintenance job (link expiry, state sweep, export cleanup)
	maintenance := jobs.NewMaintenanceJob(appLog, linkService, reportService, states)
	maintenance.Start(1 * time.Minute)
	appLog.Info("maintenance job started")

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoints
	router.GET("/health", healthHandler.Health)
	router.GET("/api/stats", healthHandler.Stats)

	// Admin login (public)
	router.POST("/auth/login", authHandler.Login)

	// Bot-facing API routes
	api := router.Group("/api")
	{
		api.POST("/users", userHandler.Register)
		api.GET("/users/:id", userHandler.Get)
		api.GET("/users/:id/history", userHandler.History)

		api.POST("/links/request", linkHandler.Request)
		api.POST("/links/claim", linkHandler.Claim)

		api.POST("/referral/apply", referralHandler.Apply)
		api.GET("/referral/:id/stats", referralHandler.Stats)

		api.POST("/payments", paymentHandler.Create)

		api.GET("/tts/voices", ttsHandler.Voices)
		api.POST("/tts/quote", ttsHandler.Quote)
		api.POST("/tts/speak", ttsHandler.Speak)
	}

	// Admin routes (protected)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	{
		admin.GET("/payments/pending", paymentHandler.ListPending)
		admin.GET("/payments/lookup", paymentHandler.Lookup)
		admin.POST("/payments/:id/confirm", paymentHandler.Confirm)
		admin.POST("/payments/:id/cancel", paymentHandler.Cancel)
		admin.POST("/payments/:id/bonus", paymentHandler.GrantBonus)

		admin.POST("/credits/give", creditHandler.Give)
		admin.POST("/credits/give-all", creditHandler.GiveAll)

		admin.POST("/users/:id/ban", userHandler.Ban)
		admin.POST("/users/:id/unban", userHandler.Unban)

		admin.DELETE("/links/:id", linkHandler.Revoke)

		admin.GET("/settings", settingsHandler.List)
		admin.PUT("/settings", settingsHandler.Update)
		admin.PUT("/settings/shortener", settingsHandler.RotateShortener)

		admin.GET("/reports/summary", reportHandler.Summary)
		admin.GET("/reports/range", reportHandler.Range)
		admin.GET("/reports/export", reportHandler.Export)
		admin.GET("/reports/verify", reportHandler.VerifyBalances)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
