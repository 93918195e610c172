package routes

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"jasminecake/db"
	"jasminecake/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type testimonialRequest struct {
	CustomerName string  `json:"customer_name" validate:"required"`
	Message      string  `json:"message" validate:"required"`
	ProductID    *uint   `json:"product_id"`
	ImageURL     *string `json:"image_url"`
}

type featuredRequest struct {
	IsFeatured bool `json:"is_featured"`
}

// UploadTestimonialImage - POST /testimonials/upload
// Only uploads the binary and hands back the URL. The testimonial row
// is created in a separate call with that URL.
func uploadTestimonialImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to get uploaded file",
		})
	}

	if err := validateImageFile(fh); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	src, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	key := fmt.Sprintf("testimonials/%d-%s%s", time.Now().UnixMilli(), uuid.New().String()[:7], ext)

	publicURL, err := bucket.Upload(key, data)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload image",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"url":     publicURL,
	})
}

// CreateTestimonial - POST /testimonials
// New testimonials are never featured, pinning is a curation step.
func createTestimonial(c *fiber.Ctx) error {
	req := new(testimonialRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Customer name and message are required",
		})
	}

	testimonial := models.Testimonial{
		CustomerName: req.CustomerName,
		Message:      req.Message,
		ProductID:    req.ProductID,
		ImageURL:     req.ImageURL,
		IsFeatured:   false,
	}

	if err := db.DB.Create(&testimonial).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create testimonial",
		})
	}

	revalidate("/admin/testimoni", "/testimoni")

	return c.Status(fiber.StatusCreated).JSON(testimonial)
}

// GetAllTestimonials - GET /testimonials?featured=true
func getAllTestimonials(c *fiber.Ctx) error {
	query := db.DB.Preload("Product").Order("created_at DESC")

	if c.Query("featured") == "true" {
		query = query.Where("is_featured = ?", true)
	}

	var testimonials []models.Testimonial
	if err := query.Find(&testimonials).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get testimonials",
		})
	}

	return c.JSON(testimonials)
}

// ToggleTestimonialFeatured - PUT /testimonials/:id/featured
// There is no cap on how many testimonials may be featured at once.
func toggleTestimonialFeatured(c *fiber.Ctx) error {
	id := c.Params("id")

	req := new(featuredRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	result := db.DB.Model(&models.Testimonial{}).Where("id = ?", id).Update("is_featured", req.IsFeatured)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update testimonial",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Testimonial not found",
		})
	}

	revalidate("/admin/testimoni", "/testimoni")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Testimonial updated successfully",
	})
}

// DeleteTestimonial - DELETE /testimonials/:id
// Removes the row only. A testimonial image, if any, stays in storage.
func deleteTestimonial(c *fiber.Ctx) error {
	id := c.Params("id")

	var testimonial models.Testimonial
	if err := db.DB.First(&testimonial, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Testimonial not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find testimonial",
		})
	}

	if err := db.DB.Delete(&testimonial).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete testimonial",
		})
	}

	revalidate("/admin/testimoni", "/testimoni")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Testimonial deleted successfully",
	})
}
