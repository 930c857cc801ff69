// @title BlogFlow API
// @version 1.0
// @description Content management backend for the BlogFlow blog: sessions, accounts, posts, image uploads, and a live post feed.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5001
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/blogflow/backend/docs" // Import generated docs
	"github.com/blogflow/backend/internal/config"
	"github.com/blogflow/backend/internal/db"
	"github.com/blogflow/backend/internal/server"
	"github.com/blogflow/backend/internal/storage"
)

func main() {
	cfg := config.Load()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"*"},
	}))

	gormDB, err := db.Open(db.Config{
		DatabaseURL:     cfg.DatabaseURL,
		SQLitePath:      cfg.SQLitePath,
		PoolSize:        cfg.PoolSize,
		PoolRecycle:     cfg.PoolRecycle,
		PoolPrePing:     cfg.PoolPrePing,
		ConnectTimeout:  cfg.ConnectTimeout,
		ApplicationName: cfg.ApplicationName,
	})
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}

	// The server runs without object storage; uploads answer 503 until it
	// comes back.
	var store storage.FileStorage
	if minioClient, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:        cfg.MinioEndpoint,
		AccessKeyID:     cfg.MinioAccessKey,
		SecretAccessKey: cfg.MinioSecretKey,
		UseSSL:          cfg.MinioUseSSL,
		BucketName:      cfg.MinioBucket,
		Region:          cfg.MinioRegion,
		PublicURL:       cfg.MinioPublicURL,
	}); err != nil {
		log.Printf("object storage unavailable: %v", err)
	} else {
		store = minioClient
	}

	_ = server.New(e, gormDB, store, cfg)

	// Add Swagger documentation endpoint
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	e.Logger.Fatal(e.Start(":" + port))
}
