package server

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/blogflow/backend/internal/config"
	"github.com/blogflow/backend/internal/models"
	"github.com/blogflow/backend/internal/services"
	"github.com/blogflow/backend/internal/storage"
)

type Server struct {
	DB      *gorm.DB
	Cfg     config.AppConfig
	Posts   *services.PostService
	Hub     *services.FeedHub
	Storage storage.FileStorage
}

func New(e *echo.Echo, db *gorm.DB, store storage.FileStorage, cfg config.AppConfig) *Server {
	// Auto-migrate schema
	_ = db.AutoMigrate(
		&models.User{},
		&models.LoginAttempt{},
		&models.Post{},
	)

	posts := services.NewPostService(db)
	hub := services.NewFeedHub(posts)

	s := &Server{
		DB:      db,
		Cfg:     cfg,
		Posts:   posts,
		Hub:     hub,
		Storage: store,
	}

	// Security middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.Secure())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20))) // 20 requests per second

	// Health
	e.GET("/health", s.Health)

	// Auth (public routes)
	e.POST("/signup", s.Signup)
	e.POST("/login", s.Login)

	// Auth (protected routes)
	authGroup := e.Group("/auth")
	authGroup.Use(s.JWTMiddleware())
	authGroup.POST("/logout", s.Logout)
	authGroup.GET("/profile", s.GetProfile)

	// Posts: reading is public, writing requires a session
	e.GET("/posts", s.ListPosts)
	e.GET("/posts/:slug", s.GetPostBySlug)

	protectedGroup := e.Group("")
	protectedGroup.Use(s.JWTMiddleware())
	protectedGroup.POST("/posts", s.CreatePost)
	protectedGroup.PUT("/posts/:id", s.UpdatePost)
	protectedGroup.DELETE("/posts/:id", s.DeletePost)

	// Image uploads
	protectedGroup.POST("/uploads", s.UploadImage)

	// Live post feed
	e.GET("/ws/posts", s.HandleFeed)
	e.GET("/ws/stats", s.FeedStats)

	// Start the live feed hub
	go s.Hub.Run()

	// Start cleanup job for old login attempts
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			s.CleanupOldAttempts()
		}
	}()

	return s
}
