package routes

import (
	"os"

	"jasminecake/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// bucket holds the object-storage bucket handlers upload into. Set once
// by SetupRoutes.
var bucket *storage.Bucket

func SetupRoutes(app *fiber.App, b *storage.Bucket) {
	bucket = b

	startRevalidator()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Storefront clients listen here for view revalidation events
	app.Get("/ws", revalidationSocket)

	api := app.Group("/api")

	// Category routes
	categories := api.Group("/categories")
	categories.Get("/", getAllCategories)
	categories.Get("/:id", getCategory)
	categories.Post("/", requireAPIKey, createCategory)
	categories.Put("/:id", requireAPIKey, updateCategory)
	categories.Delete("/:id", requireAPIKey, deleteCategory)

	// Product routes
	products := api.Group("/products")
	products.Get("/", getAllProducts)
	products.Get("/:id", getProduct)
	products.Get("/:id/related", getRelatedProducts)
	products.Post("/", requireAPIKey, createProduct)
	products.Put("/:id", requireAPIKey, updateProduct)
	products.Delete("/:id", requireAPIKey, deleteProduct)

	// Product image routes
	products.Post("/:id/images", requireAPIKey, uploadProductImage)
	products.Post("/:id/images/batch", requireAPIKey, uploadProductImageBatch)
	products.Put("/:id/images/:imageId/primary", requireAPIKey, setPrimaryImage)
	products.Delete("/:id/images/:imageId", requireAPIKey, deleteProductImage)

	// Testimonial routes. Submission is public, curation is admin-only.
	testimonials := api.Group("/testimonials")
	testimonials.Get("/", getAllTestimonials)
	testimonials.Post("/upload", uploadTestimonialImage)
	testimonials.Post("/", createTestimonial)
	testimonials.Put("/:id/featured", requireAPIKey, toggleTestimonialFeatured)
	testimonials.Delete("/:id", requireAPIKey, deleteTestimonial)
}

// requireAPIKey guards admin mutations. An unset ADMIN_API_KEY disables
// the check for local development.
func requireAPIKey(c *fiber.Ctx) error {
	key := os.Getenv("ADMIN_API_KEY")
	if key != "" && c.Get("X-API-Key") != key {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or missing API key",
		})
	}
	return c.Next()
}
