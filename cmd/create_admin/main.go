package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/blogflow/backend/internal/config"
	"github.com/blogflow/backend/internal/db"
	"github.com/blogflow/backend/internal/models"
)

// Seeds the administrator credential record so the admin panel is usable
// before anyone has registered.
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: create_admin <email> <username> [password]")
		fmt.Println("Example: create_admin admin@example.com admin")
		fmt.Println("When the password is omitted it is prompted for.")
		os.Exit(1)
	}

	email := os.Args[1]
	username := os.Args[2]

	var password string
	if len(os.Args) > 3 {
		password = os.Args[3]
	} else {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			log.Fatalf("Failed to read password: %v", err)
		}
		password = string(raw)
	}
	if password == "" {
		fmt.Println("Password must not be empty")
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	// Connect to database
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
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate schema
	if err := gormDB.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	// Check if user already exists
	var existingUser models.User
	result := gormDB.Where("username = ? OR email = ?", username, email).First(&existingUser)
	if result.Error == nil {
		fmt.Printf("User %s already exists\n", existingUser.Username)
		os.Exit(1)
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	adminUser := models.User{
		Email:    email,
		Username: username,
		Password: string(hashedPassword),
	}

	result = gormDB.Create(&adminUser)
	if result.Error != nil {
		log.Fatalf("Failed to create admin user: %v", result.Error)
	}

	fmt.Printf("Admin user created successfully!\n")
	fmt.Printf("Email: %s\n", email)
	fmt.Printf("Username: %s\n", username)
	fmt.Printf("ID: %d\n", adminUser.ID)
	fmt.Printf("\nYou can now login with these credentials.\n")
}
