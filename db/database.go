package db

import (
	"log"
	"os"
	"path/filepath"

	"jasminecake/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDatabase() {
	var err error
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "database.db"
	}

	// Ensure the directory exists (create if it doesn't)
	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal("Failed to create database directory:", err)
		}
	}

	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	log.Println("Database connected successfully at", dbPath)

	Migrate(DB)
}

// Migrate runs the schema migration. Split out so tests can run it
// against their own in-memory connection.
func Migrate(g *gorm.DB) {
	g.AutoMigrate(
		&models.Category{}, &models.Product{}, &models.ProductImage{}, &models.Testimonial{},
	)
}
