package main

import (
	"github.com/dogmatus07/lynkevo-insights/internal/handler"
	"github.com/dogmatus07/lynkevo-insights/internal/middleware"
	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"github.com/dogmatus07/lynkevo-insights/pkg/config"
	"github.com/dogmatus07/lynkevo-insights/pkg/database"
	"github.com/dogmatus07/lynkevo-insights/pkg/jwtutil"
	"github.com/dogmatus07/lynkevo-insights/pkg/logger"
	"github.com/dogmatus07/lynkevo-insights/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("lynkevo-insights")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting insights service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if _, err := database.InitDB(&cfg.DB); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Run migrations
	err = database.MigrateModels(
		&model.User{},
		&model.Client{},
		&model.Membership{},
		&model.KPIReport{},
		&model.TicketCategory{},
		&model.WeeklyHighlight{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations completed")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover()) // Add recovery middleware
	e.Use(echomiddleware.CORS())    // Add CORS middleware
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes - these don't belong under /api since they're for getting access to the API
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)
	auth.POST("/logout", handler.Logout, middleware.AuthMiddleware)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Dashboard landing view
	api.GET("/dashboard", handler.Dashboard)

	// Client management - staff only
	clients := api.Group("/clients")
	clients.Use(middleware.RequireStaff)
	clients.GET("", handler.ListClients)
	clients.POST("", handler.CreateClient)
	clients.GET("/:id", handler.GetClientDetail)
	clients.PUT("/:id", handler.UpdateClient)
	clients.DELETE("/:id", handler.DeleteClient)
	clients.POST("/:id/users", handler.AddUserToClient)

	// User management - staff only
	users := api.Group("/users")
	users.Use(middleware.RequireStaff)
	users.GET("", handler.ListUsers)
	users.POST("", handler.CreateUser)

	// KPI reports - scoped to the caller's visible clients
	kpi := api.Group("/kpi")
	kpi.GET("", handler.KPIOverview)
	kpi.POST("", handler.CreateKPIReport)
	kpi.POST("/:id/categories", handler.AddReportCategory)
	kpi.GET("/analytics", handler.Analytics)

	// Report browsing and document generation
	reports := api.Group("/reports")
	reports.GET("", handler.ReportsOverview)
	reports.POST("/generate", handler.GenerateReport)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
