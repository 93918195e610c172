package main

import (
	"log"
	"os"

	"jasminecake/db"
	"jasminecake/routes"
	"jasminecake/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	// Initialize database
	db.InitDatabase()

	// Open the image bucket
	bucket, err := storage.Open(
		envOr("BUCKET_NAME", "kue"),
		envOr("STORAGE_ROOT", "uploads"),
		envOr("PUBLIC_BASE_URL", "http://localhost:3000"),
	)
	if err != nil {
		log.Fatal("Failed to open storage bucket:", err)
	}

	// Create Fiber app. Body limit leaves room for the 5MB image cap
	// plus multipart overhead.
	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Serve bucket objects at their public URLs
	app.Static(bucket.PublicPath(), bucket.Root())

	// Setup routes
	routes.SetupRoutes(app, bucket)

	// Start server
	log.Fatal(app.Listen(":" + envOr("PORT", "3000")))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
