package main

import (
	"log"
	"time"

	"github.com/cagrik/pazarly/internal/auditlog"
	"github.com/cagrik/pazarly/internal/cache"
	"github.com/cagrik/pazarly/internal/config"
	"github.com/cagrik/pazarly/internal/database"
	"github.com/cagrik/pazarly/internal/handler"
	"github.com/cagrik/pazarly/internal/middleware"
	"github.com/cagrik/pazarly/internal/repository"
	"github.com/cagrik/pazarly/internal/service"
	"github.com/cagrik/pazarly/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	log.Println("Config loaded successfully")

	if err := logger.Init(cfg.Environment != "production"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Audit trail for message mutations
	audit, err := auditlog.NewLog(cfg.AuditLogPath)
	if err != nil {
		log.Fatalf("Failed to initialize audit log: %v", err)
	}
	defer audit.Close()

	// Redis like-count cache
	likeCache, err := cache.NewLikeCache(cfg.RedisURL, cfg.LikeCacheTTL)
	if err != nil {
		log.Fatalf("Failed to initialize Redis cache: %v", err)
	}
	defer likeCache.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	categoryRepo := repository.NewCategoryRepository(database.DB)
	adRepo := repository.NewAdRepository(database.DB)
	likeRepo := repository.NewLikeRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.Environment)
	adService := service.NewAdService(adRepo, categoryRepo, cfg.PageSize)
	likeService := service.NewLikeService(likeRepo, adRepo, likeCache)
	conversationService := service.NewConversationService(messageRepo, adRepo, userRepo, audit)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	adHandler := handler.NewAdHandler(adService, likeService, conversationService, cfg.UploadDir)
	likeHandler := handler.NewLikeHandler(likeService)
	conversationHandler := handler.NewConversationHandler(conversationService)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.Environment == "production"))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Static("/uploads", cfg.UploadDir)

	// Public routes
	router.POST("/api/auth/register", authHandler.Register)
	router.POST("/api/auth/login", authHandler.Login)
	router.GET("/api/categories", adHandler.ListCategories)
	router.GET("/categories/:categorySlug/ads", adHandler.ListAds)
	router.GET("/categories/:categorySlug/ads/:adSlug", adHandler.Detail)

	// Protected API routes (JSON 401)
	api := router.Group("/")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		api.POST("/api/auth/logout", authHandler.Logout)
		api.GET("/api/me", authHandler.Me)
		api.POST("/api/ads", adHandler.Create)
		api.POST("/categories/:categorySlug/ads/:adSlug/edit", adHandler.Edit)
		api.POST("/categories/:categorySlug/ads/:adSlug/delete", adHandler.Delete)
		api.POST("/api/ads/:adSlug/like", likeHandler.Like)
		api.POST("/api/ads/:adSlug/unlike", likeHandler.Unlike)
	}

	// Browser-facing routes (redirect to /login?next=... when unauthenticated)
	chat := router.Group("/")
	chat.Use(middleware.LoginRequired(cfg.JWTSecret))
	{
		chat.GET("/chat/all", conversationHandler.List)
		chat.GET("/chat/all/:adSlug/conversations/:conversationID", conversationHandler.Detail)
		chat.POST("/chat/all/:adSlug/conversations/:conversationID", conversationHandler.Send)
		chat.POST("/chat/all/:adSlug/conversations/:conversationID/message/:messageID/edit", conversationHandler.Edit)
		chat.POST("/chat/all/:adSlug/conversations/:conversationID/message/:messageID/delete", conversationHandler.Delete)
		chat.POST("/categories/:categorySlug/ads/:adSlug/contact", adHandler.Contact)
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
