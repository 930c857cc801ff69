package db

import (
	"context"
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	DatabaseURL     string
	SQLitePath      string
	PoolSize        int
	PoolRecycle     time.Duration
	PoolPrePing     bool
	ConnectTimeout  time.Duration
	ApplicationName string
}

// Open connects to Postgres when DatabaseURL is set, otherwise to a local
// sqlite file. The sqlite path is the dev/test configuration.
func Open(cfg Config) (*gorm.DB, error) {
	customLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gormCfg := &gorm.Config{
		Logger:      customLogger,
		PrepareStmt: true,
	}

	if cfg.DatabaseURL == "" {
		path := cfg.SQLitePath
		if path == "" {
			path = "blogflow.db"
		}
		return gorm.Open(sqlite.Open(path), gormCfg)
	}

	databaseURL := withConnParams(cfg.DatabaseURL, cfg.ApplicationName)

	db, err := gorm.Open(postgres.Open(databaseURL), gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.PoolSize)

	idleConns := cfg.PoolSize / 2
	if idleConns < 2 {
		idleConns = 2
	}
	sqlDB.SetMaxIdleConns(idleConns)

	sqlDB.SetConnMaxLifetime(cfg.PoolRecycle)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Printf("db ping error: %v", err)
	}

	return db, nil
}

// withConnParams appends timezone/timeout/name parameters to the URL when
// the caller has not set them already.
func withConnParams(databaseURL, applicationName string) string {
	params := []string{}

	if !strings.Contains(databaseURL, "timezone=") {
		params = append(params, "timezone=UTC")
	}
	if !strings.Contains(databaseURL, "connect_timeout=") {
		params = append(params, "connect_timeout=10")
	}
	if applicationName != "" && !strings.Contains(databaseURL, "application_name=") {
		params = append(params, "application_name="+applicationName)
	}
	if !strings.Contains(databaseURL, "sslmode=") {
		params = append(params, "sslmode=disable")
	}

	if len(params) == 0 {
		return databaseURL
	}
	separator := "?"
	if strings.Contains(databaseURL, "?") {
		separator = "&"
	}
	return databaseURL + separator + strings.Join(params, "&")
}
