package routes

import (
	"jasminecake/db"
	"jasminecake/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type categoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Slug        string  `json:"slug" validate:"required"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// CreateCategory - POST /categories
func createCategory(c *fiber.Ctx) error {
	req := new(categoryRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and slug are required",
		})
	}

	// New categories append after the current last one
	var maxOrder int
	if err := db.DB.Model(&models.Category{}).
		Select("COALESCE(MAX(display_order), 0)").Scan(&maxOrder).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to determine display order",
		})
	}

	category := models.Category{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		DisplayOrder: maxOrder + 1,
	}

	if err := db.DB.Create(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create category, slug may already be in use",
		})
	}

	revalidate("/admin/kategori", "/galeri", "/")

	return c.Status(fiber.StatusCreated).JSON(category)
}

// GetAllCategories - GET /categories
func getAllCategories(c *fiber.Ctx) error {
	var categories []models.Category

	if err := db.DB.Order("display_order ASC").Find(&categories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get categories",
		})
	}

	return c.JSON(categories)
}

// GetCategory - GET /categories/:id
func getCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	var category models.Category

	if err := db.DB.
		Preload("Products", "is_available = ?", true).
		Preload("Products.Images", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("is_primary DESC, display_order ASC")
		}).
		First(&category, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Category not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get category",
		})
	}

	return c.JSON(category)
}

// UpdateCategory - PUT /categories/:id
func updateCategory(c *fiber.Ctx) error {
	id := c.Params("id")

	req := new(categoryRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and slug are required",
		})
	}

	var category models.Category
	if err := db.DB.First(&category, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Category not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find category",
		})
	}

	// Full replace of the mutable fields, display order stays put
	category.Name = req.Name
	category.Slug = req.Slug
	category.Description = req.Description
	category.ImageURL = req.ImageURL

	if err := db.DB.Save(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update category",
		})
	}

	revalidate("/admin/kategori", "/galeri", "/")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Category updated successfully",
		"data":    category,
	})
}

// DeleteCategory - DELETE /categories/:id
// Products referencing the category are left in place, they simply show
// no category afterwards.
func deleteCategory(c *fiber.Ctx) error {
	id := c.Params("id")

	var category models.Category
	if err := db.DB.First(&category, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Category not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find category",
		})
	}

	if err := db.DB.Delete(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete category",
		})
	}

	revalidate("/admin/kategori", "/galeri", "/")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Category deleted successfully",
	})
}
