package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"mission-service/internal/feedview"
	"mission-service/internal/handler"
	"mission-service/internal/middleware"
	"mission-service/internal/model"
	"mission-service/pkg/config"
	"mission-service/pkg/database"
	"mission-service/pkg/jwtutil"
	"mission-service/pkg/logger"
	"mission-service/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting mission service...", cfg.LogConfig()...)

	// Initialize database; handlers degrade to 503 rather than crash
	// when the connection cannot be established
	if err := database.InitDB(cfg); err != nil {
		log.Error("Failed to initialize database, continuing degraded", zap.Error(err))
	} else {
		log.Info("Database connection established")
	}

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Wire handler dependencies
	handler.SetConfig(cfg)
	if database.Available() {
		store := feedview.New()
		if err := store.Load(database.GetDB()); err != nil {
			log.Error("Failed to load feed store", zap.Error(err))
		} else {
			handler.SetFeedStore(store)
			log.Info("Feed store loaded")
		}
	}

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)

	// Demo accounts are gated by configuration, not by a token
	e.GET("/api/auth/demo-account", handler.CheckDemoAccount)
	e.POST("/api/auth/demo-account", handler.DemoLogin)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Caller's own profile
	api.GET("/profile", handler.GetProfile)
	api.PATCH("/profile", handler.UpdateProfile)

	// Admin surface
	admin := api.Group("/admin")
	admin.Use(middleware.RequireRoles(model.RoleAdmin, model.RoleSuperAdmin))
	admin.GET("/posts", handler.ListPosts)
	admin.POST("/posts", handler.CreatePost)
	admin.GET("/posts/:id", handler.GetPost)
	admin.PATCH("/posts/:id", handler.UpdatePost)
	admin.DELETE("/posts/:id", handler.DeletePost)
	admin.GET("/comments", handler.ListComments)
	admin.PATCH("/comments/:id", handler.UpdateComment)
	admin.DELETE("/comments/:id", handler.DeleteComment)
	admin.POST("/missionaries", handler.CreateMissionary)
	admin.POST("/locations", handler.CreateLocation)
	admin.PATCH("/locations/:id", handler.UpdateLocation)
	admin.DELETE("/locations/:id", handler.DeleteLocation)

	// Org settings: reads are open to any authenticated member, writes
	// are admin-only inside the handler
	api.GET("/admin/org-settings", handler.GetOrgSettings)
	api.PATCH("/admin/org-settings", handler.UpdateOrgSettings)

	// Donations
	api.GET("/donations", handler.ListDonations)
	api.POST("/donations", handler.CreateDonation)

	// Missionaries
	api.GET("/missionaries", handler.ListMissionaries)
	api.GET("/missionaries/:id/supporters", handler.GetSupporters)
	api.GET("/missionaries/:id/funds", handler.GetMissionaryFunds)
	api.POST("/missionaries/:id/follow", handler.FollowMissionary)
	api.DELETE("/missionaries/:id/follow", handler.UnfollowMissionary)

	// Posts: reactions and comments
	api.POST("/posts/:id/prayer", handler.AddPrayer)
	api.DELETE("/posts/:id/prayer", handler.RemovePrayer)
	api.POST("/posts/:id/like", handler.AddLike)
	api.DELETE("/posts/:id/like", handler.RemoveLike)
	api.POST("/posts/:id/comments", handler.CreateComment)

	// Donor feed
	api.GET("/feed", handler.GetFeed)
	api.GET("/donor/feed-preferences", handler.GetFeedPreferences)
	api.POST("/donor/feed-preferences", handler.UpdateFeedPreferences)

	// Map pins
	api.GET("/locations", handler.ListLocations)

	// Uploads
	api.POST("/upload/cloudinary/signature", handler.CloudinarySignature)
	api.POST("/upload/image", handler.UploadImage)

	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
