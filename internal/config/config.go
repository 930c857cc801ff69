package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// DatabaseURL selects Postgres; when empty the server falls back to a
	// local sqlite file at SQLitePath.
	DatabaseURL string
	SQLitePath  string

	JWTSecret string
	JWTExpiry time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string
	MinioRegion    string
	// MinioPublicURL is the externally reachable base URL used to build
	// image retrieval URIs handed back to clients.
	MinioPublicURL string

	// Development settings
	DevMode bool

	PoolSize        int
	PoolRecycle     time.Duration
	PoolPrePing     bool
	ConnectTimeout  time.Duration
	ApplicationName string
}

func Load() AppConfig {
	// Best-effort; env vars win over .env entries.
	_ = godotenv.Load()

	cfg := AppConfig{}
	cfg.Port = getenv("PORT", "5001")
	cfg.DatabaseURL = getenv("DATABASE_URL", "")
	cfg.SQLitePath = getenv("SQLITE_PATH", "blogflow.db")

	cfg.JWTSecret = getenv("JWT_SECRET", "change-this-jwt-secret-in-production")
	cfg.JWTExpiry = time.Duration(getenvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour

	cfg.MinioEndpoint = getenv("MINIO_ENDPOINT", "localhost:9000")
	cfg.MinioAccessKey = getenv("MINIO_ACCESS_KEY", "minioadmin")
	cfg.MinioSecretKey = getenv("MINIO_SECRET_KEY", "minioadmin")
	cfg.MinioUseSSL = getenv("MINIO_USE_SSL", "false") == "true"
	cfg.MinioBucket = getenv("MINIO_BUCKET", "blogflow-images")
	cfg.MinioRegion = getenv("MINIO_REGION", "")
	cfg.MinioPublicURL = getenv("MINIO_PUBLIC_URL", "http://localhost:9000/blogflow-images")

	cfg.DevMode = getenv("DEV_MODE", "false") == "true"

	cfg.PoolSize = getenvInt("DB_POOL_SIZE", 25)
	cfg.PoolRecycle = time.Duration(getenvInt("DB_POOL_RECYCLE_SECONDS", 300)) * time.Second
	cfg.PoolPrePing = getenv("DB_POOL_PREPING", "true") == "true"
	cfg.ConnectTimeout = time.Duration(getenvInt("DB_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second
	cfg.ApplicationName = getenv("DB_APPLICATION_NAME", "blogflow_app")
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		_, _ = fmt.Sscanf(v, "%d", &n)
		if n != 0 {
			return n
		}
	}
	return def
}
