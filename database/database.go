package database

import (
	"fmt"
	"log"
	"os"
	"time"
	"todolist-restful/config"
	"todolist-restful/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the configured database, runs migrations and seeds the
// initial roles and admin account. The returned handle is passed to the
// repositories explicitly; there is no package-level connection.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	// GORM logger configuration
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level (Silent, Error, Warn, Info)
			IgnoreRecordNotFoundError: true,        // Ignore ErrRecordNotFound error for logger
			Colorful:                  true,        // Enable color
		},
	)

	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DatabaseURL)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// AutoMigrate models including the roles_users join table
	if err := db.AutoMigrate(&models.User{}, &models.Role{}, &models.Todo{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := SeedInitialData(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

// SeedInitialData seeds the database with the built-in roles and an initial
// administrator. Existing rows are left untouched, so restarts are safe.
func SeedInitialData(db *gorm.DB, cfg *config.Config) error {
	roles := []models.Role{
		{Name: "admin", Description: "Administrator with full access"},
		{Name: "user", Description: "Standard user"},
	}

	for _, r := range roles {
		var existing models.Role
		err := db.Where("name = ?", r.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("error checking for role %s: %w", r.Name, err)
		}
		if err := db.Create(&r).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", r.Name, err)
		}
		log.Printf("Seeded role: %s\n", r.Name)
	}

	// Create an initial admin user if none exists
	var adminUser models.User
	if err := db.Where("name = ?", "admin").First(&adminUser).Error; err == gorm.ErrRecordNotFound {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), cfg.BcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash seed admin password: %w", err)
		}
		adminUser = models.User{
			Name:     "admin",
			Email:    "admin@example.com",
			Password: string(hashedPassword),
			Active:   true,
		}
		if err := db.Create(&adminUser).Error; err != nil {
			return fmt.Errorf("failed to create initial admin user: %w", err)
		}

		// Assign admin role to the new admin user
		var adminRole models.Role
		if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
			return fmt.Errorf("failed to find admin role to assign: %w", err)
		}
		if err := db.Model(&adminUser).Association("Roles").Append(&adminRole); err != nil {
			return fmt.Errorf("failed to assign admin role: %w", err)
		}
		log.Println("Created initial admin user and assigned admin role.")
	}

	return nil
}
