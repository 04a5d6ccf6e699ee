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

	"trading-contests/internal/auth"
	"trading-contests/internal/cache"
	"trading-contests/internal/config"
	"trading-contests/internal/database"
	"trading-contests/internal/handlers"
	"trading-contests/internal/jobs"
	"trading-contests/internal/metrics"
	"trading-contests/internal/repository"
	"trading-contests/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations and seed instruments
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.SeedInstruments(database.GetDB()); err != nil {
		log.Fatalf("Failed to seed instruments: %v", err)
	}

	db := database.GetDB()

	// Initialize services
	userCache := cache.New(30*time.Second, time.Minute)
	defer userCache.Close()

	notifier := services.NewLogNotificationSink()
	priceFeed := services.NewPriceService(cfg.PriceFeed.BaseURL, cfg.PriceFeed.CacheTTL)
	ledgerService := services.NewLedgerService(db)
	rankingService := services.NewRankingService()
	riskService := services.NewRiskService(db, priceFeed, cfg.Risk, notifier)
	contestService := services.NewContestService(db, ledgerService, riskService, rankingService, notifier)
	paymentService := services.NewPaymentService(db, ledgerService)
	userService := services.NewUserService(db, userCache)

	// Initialize repository
	repo := repository.NewRepository(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	contestHandler := handlers.NewContestHandler(contestService, repo)
	tradingHandler := handlers.NewTradingHandler(riskService, repo)
	walletHandler := handlers.NewWalletHandler(ledgerService, paymentService)
	adminHandler := handlers.NewAdminHandler(db, contestService, riskService, ledgerService, paymentService, userService)

	// Start background sweeps
	finalizeSweeper := jobs.NewFinalizeSweeper(contestService, cfg.Jobs.FinalizeInterval)
	go finalizeSweeper.Start()
	defer finalizeSweeper.Stop()

	riskSweeper := jobs.NewRiskSweeper(riskService, cfg.Jobs.RiskInterval)
	go riskSweeper.Start()
	defer riskSweeper.Stop()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
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

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Payment provider webhooks (public, provider-authenticated upstream)
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/deposit", walletHandler.DepositWebhook)
		webhooks.POST("/payout", walletHandler.PayoutWebhook)
	}

	// Public contest routes
	router.GET("/api/contests", contestHandler.ListContests)
	router.GET("/api/contests/:id", contestHandler.GetContest)
	router.GET("/api/contests/:id/leaderboard", contestHandler.GetLeaderboard)
	router.GET("/api/instruments", tradingHandler.GetInstruments)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.GET("/me", userHandler.GetMe)
		api.PUT("/me/avatar", userHandler.UpdateAvatar)

		// Contest endpoints
		api.GET("/contests/mine", contestHandler.GetMyContests)
		api.POST("/contests/:id/join", contestHandler.Join)
		api.GET("/contests/:id/me", contestHandler.GetMyEntry)
		api.GET("/contests/:id/positions", tradingHandler.GetOpenPositions)
		api.GET("/contests/:id/trades", tradingHandler.GetTradeHistory)

		// Trading endpoints
		api.POST("/positions", tradingHandler.OpenPosition)
		api.POST("/positions/:id/close", tradingHandler.ClosePosition)

		// Wallet endpoints
		api.GET("/wallet", walletHandler.GetWallet)
		api.GET("/wallet/transactions", walletHandler.GetTransactions)
		api.POST("/wallet/withdrawals", walletHandler.RequestWithdrawal)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(adminHandler.RequireAdmin())
	{
		admin.POST("/contests", adminHandler.CreateContest)
		admin.POST("/contests/:id/publish", adminHandler.PublishContest)
		admin.POST("/contests/:id/finalize", adminHandler.TriggerFinalize)
		admin.POST("/contests/:id/cancel", adminHandler.TriggerCancel)
		admin.POST("/positions/:id/close", adminHandler.ForceClosePosition)
		admin.POST("/users/:id/adjust", adminHandler.AdjustBalance)
		admin.GET("/withdrawals/stale", adminHandler.StaleWithdrawals)
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
