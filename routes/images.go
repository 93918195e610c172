package routes

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"jasminecake/db"
	"jasminecake/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const maxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

var (
	errUnsupportedImage = errors.New("unsupported file type, use JPG, PNG, WebP, or GIF")
	errImageTooLarge    = fmt.Errorf("file too large, maximum is %dMB", maxImageSize/(1024*1024))
)

// validateImageFile rejects a file before anything touches storage.
func validateImageFile(fh *multipart.FileHeader) error {
	if !allowedImageTypes[fh.Header.Get("Content-Type")] {
		return errUnsupportedImage
	}
	if fh.Size > maxImageSize {
		return errImageTooLarge
	}
	return nil
}

// imageStorageKey prefers the persisted key and falls back to parsing
// the public URL for rows written before the key column existed.
func imageStorageKey(img models.ProductImage) string {
	if img.StorageKey != "" {
		return img.StorageKey
	}
	return bucket.KeyFromURL(img.ImageURL)
}

// saveProductImage uploads one file and records its row. Returns the
// row, or a suggested HTTP status and error. If the row insert fails
// after the upload succeeded, the uploaded object is removed again so
// no orphan is left behind.
func saveProductImage(productID uint, fh *multipart.FileHeader, isPrimary bool) (*models.ProductImage, int, error) {
	if err := validateImageFile(fh); err != nil {
		return nil, fiber.StatusBadRequest, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fiber.StatusInternalServerError, errors.New("failed to read uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fiber.StatusInternalServerError, errors.New("failed to read uploaded file")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	// Nanosecond timestamps keep keys unique even for back-to-back uploads
	key := fmt.Sprintf("%d/%d%s", productID, time.Now().UnixNano(), ext)

	publicURL, err := bucket.Upload(key, data)
	if err != nil {
		return nil, fiber.StatusInternalServerError, errors.New("failed to upload image")
	}

	var maxOrder int
	if err := db.DB.Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		Select("COALESCE(MAX(display_order), 0)").Scan(&maxOrder).Error; err != nil {
		bucket.Remove(key)
		return nil, fiber.StatusInternalServerError, errors.New("failed to determine display order")
	}

	image := models.ProductImage{
		ProductID:    productID,
		ImageURL:     publicURL,
		StorageKey:   key,
		IsPrimary:    isPrimary,
		DisplayOrder: maxOrder + 1,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if isPrimary {
			if err := tx.Model(&models.ProductImage{}).
				Where("product_id = ? AND is_primary = ?", productID, true).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&image).Error
	})
	if err != nil {
		// Storage happened first, roll it back so the object is not orphaned
		if rmErr := bucket.Remove(key); rmErr != nil {
			log.Println("Failed to roll back uploaded object:", rmErr)
		}
		return nil, fiber.StatusInternalServerError, errors.New("failed to save image record")
	}

	return &image, fiber.StatusCreated, nil
}

// UploadProductImage - POST /products/:id/images
func uploadProductImage(c *fiber.Ctx) error {
	var product models.Product
	if err := db.DB.First(&product, c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find product",
		})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to get uploaded file",
		})
	}

	isPrimary := c.FormValue("is_primary") == "true"

	image, status, err := saveProductImage(product.ID, fh, isPrimary)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	revalidate(fmt.Sprintf("/admin/produk/%d", product.ID), fmt.Sprintf("/produk/%d", product.ID))

	return c.Status(status).JSON(image)
}

// UploadProductImageBatch - POST /products/:id/images/batch
// Files are uploaded sequentially. A failure does not abort the batch,
// it is collected and reported so the caller can decide what to do with
// a partial success.
func uploadProductImageBatch(c *fiber.Ctx) error {
	var product models.Product
	if err := db.DB.First(&product, c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find product",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse multipart form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No files provided",
		})
	}

	// Only the first file of a batch may become the primary image
	primaryFirst := c.FormValue("primary_first") == "true"

	uploaded := make([]models.ProductImage, 0, len(files))
	failures := []fiber.Map{}

	for i, fh := range files {
		image, _, err := saveProductImage(product.ID, fh, primaryFirst && i == 0)
		if err != nil {
			failures = append(failures, fiber.Map{
				"filename": fh.Filename,
				"error":    err.Error(),
			})
			continue
		}
		uploaded = append(uploaded, *image)
	}

	if len(uploaded) > 0 {
		revalidate(fmt.Sprintf("/admin/produk/%d", product.ID), fmt.Sprintf("/produk/%d", product.ID))
	}

	return c.JSON(fiber.Map{
		"uploaded": uploaded,
		"failures": failures,
	})
}

// SetPrimaryImage - PUT /products/:id/images/:imageId/primary
func setPrimaryImage(c *fiber.Ctx) error {
	productID := c.Params("id")
	imageID := c.Params("imageId")

	var image models.ProductImage
	if err := db.DB.Where("product_id = ?", productID).First(&image, imageID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Image not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find image",
		})
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProductImage{}).
			Where("product_id = ? AND is_primary = ?", image.ProductID, true).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&image).Update("is_primary", true).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to set primary image",
		})
	}

	revalidate(fmt.Sprintf("/admin/produk/%d", image.ProductID), fmt.Sprintf("/produk/%d", image.ProductID))

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Primary image updated successfully",
	})
}

// DeleteProductImage - DELETE /products/:id/images/:imageId
// Deleting an image that is already gone is a success, not an error.
func deleteProductImage(c *fiber.Ctx) error {
	productID := c.Params("id")
	imageID := c.Params("imageId")

	var image models.ProductImage
	if err := db.DB.Where("product_id = ?", productID).First(&image, imageID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(fiber.Map{
				"success": true,
				"message": "Image already deleted",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find image",
		})
	}

	if err := db.DB.Delete(&image).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete image",
		})
	}

	if err := bucket.Remove(imageStorageKey(image)); err != nil {
		log.Println("Failed to remove storage object for deleted image:", err)
	}

	revalidate(fmt.Sprintf("/admin/produk/%s", productID), fmt.Sprintf("/produk/%s", productID))

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Image deleted successfully",
	})
}
