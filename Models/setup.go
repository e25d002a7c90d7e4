package Models

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the local SQLite database and migrates the tables that
// back the offline store and authentication.
func Connect() {
	path := os.Getenv("MH_DB_PATH")
	if path == "" {
		path = "database.db"
	}

	connection, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to open local database: %v", err)
	}
	DB = connection

	DB.AutoMigrate(
		&User{},
		&StoredSnapshot{},
		&CounterEntry{},
	)

	seedAdminUser()
}

// seedAdminUser creates the initial admin account when the users table
// is empty so a fresh install can log in.
func seedAdminUser() {
	var count int64
	DB.Model(&User{}).Count(&count)
	if count > 0 {
		return
	}

	password := os.Getenv("MH_ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}

	admin := User{
		Name:       "Administrator",
		Username:   "admin",
		Password:   hash,
		Permission: 4,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("Failed to seed admin user: %v", err)
	}
}
