package database

import (
	"blog-restful/config"
	"blog-restful/models"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// openDialector picks the gorm dialect for the configured driver.
func openDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

func InitDB() {
	dialector, err := openDialector(config.AppConfig.DBDriver, config.AppConfig.DatabaseURL)
	if err != nil {
		panic(err)
	}

	// GORM logger configuration
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
		// Unique violations surface as gorm.ErrDuplicatedKey on every dialect
		TranslateError: true,
	})
	if err != nil {
		panic(fmt.Errorf("failed to connect database: %w", err))
	}

	if err := Migrate(db); err != nil {
		panic(fmt.Errorf("failed to migrate database: %w", err))
	}

	DB = db
	fmt.Println("Database connection successful and migrations complete.")

	SeedInitialData(DB)
}

// Migrate registers the explicit join table and runs auto-migration for all
// models. Shared with tests that open their own database.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Post{}, "Tags", &models.PostTag{}); err != nil {
		return err
	}
	return db.AutoMigrate(&models.User{}, &models.Post{}, &models.Tag{}, &models.PostTag{})
}

// SeedInitialData creates an initial admin account when the users table is
// empty, so a fresh deployment can reach the admin-gated post routes.
func SeedInitialData(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		log.Printf("Failed to check existing users: %v\n", err)
		return
	}
	if count > 0 {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("adminpassword"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash initial admin password: %v\n", err)
		return
	}
	admin := models.User{
		FirstName:    "Admin",
		LastName:     "User",
		Email:        "admin@example.com",
		PasswordHash: string(hashedPassword),
		IsAdmin:      true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("Failed to create initial admin user: %v\n", err)
	} else {
		log.Println("Created initial admin user admin@example.com.")
	}
}
