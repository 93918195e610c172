package routes

import (
	"fmt"
	"log"

	"jasminecake/db"
	"jasminecake/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type productRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	CategoryID  *uint    `json:"category_id"`
	IsAvailable bool     `json:"is_available"`
}

type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Skip     int              `json:"skip"`
	Limit    int              `json:"limit"`
}

func orderedImages(tx *gorm.DB) *gorm.DB {
	return tx.Order("is_primary DESC, display_order ASC")
}

// CreateProduct - POST /products
// Returns the created product so callers can upload images against its id.
func createProduct(c *fiber.Ctx) error {
	req := new(productRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       normalizePrice(req.Price),
		CategoryID:  req.CategoryID,
		IsAvailable: req.IsAvailable,
	}

	if err := db.DB.Create(&product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create product",
		})
	}

	revalidate("/admin/produk", "/galeri", "/")

	return c.Status(fiber.StatusCreated).JSON(product)
}

// GetAllProducts - GET /products?category=<slug>&available=true&skip=0&limit=20
func getAllProducts(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 20)

	query := db.DB.Model(&models.Product{})

	if slug := c.Query("category"); slug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", slug)
	}
	if c.Query("available") == "true" {
		query = query.Where("products.is_available = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count products",
		})
	}

	var products []models.Product
	if err := query.
		Preload("Category").
		Preload("Images", orderedImages).
		Order("products.created_at DESC").
		Offset(skip).Limit(limit).
		Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get products",
		})
	}

	return c.JSON(ProductListResponse{
		Products: products,
		Total:    total,
		Skip:     skip,
		Limit:    limit,
	})
}

// GetProduct - GET /products/:id
func getProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	var product models.Product

	if err := db.DB.
		Preload("Category").
		Preload("Images", orderedImages).
		First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get product",
		})
	}

	return c.JSON(product)
}

// GetRelatedProducts - GET /products/:id/related
// Up to 4 available products from the same category, excluding the
// product itself.
func getRelatedProducts(c *fiber.Ctx) error {
	id := c.Params("id")
	var product models.Product

	if err := db.DB.First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get product",
		})
	}

	var related []models.Product
	if product.CategoryID != nil {
		if err := db.DB.
			Preload("Images", orderedImages).
			Where("category_id = ? AND id != ? AND is_available = ?", *product.CategoryID, product.ID, true).
			Limit(4).
			Find(&related).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to get related products",
			})
		}
	}

	return c.JSON(related)
}

// UpdateProduct - PUT /products/:id
func updateProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	req := new(productRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	var product models.Product
	if err := db.DB.First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find product",
		})
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = normalizePrice(req.Price)
	product.CategoryID = req.CategoryID
	product.IsAvailable = req.IsAvailable

	if err := db.DB.Save(&product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update product",
		})
	}

	revalidate("/admin/produk", fmt.Sprintf("/produk/%d", product.ID), "/galeri", "/")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product updated successfully",
		"data":    product,
	})
}

// DeleteProduct - DELETE /products/:id
// Image rows and the product row go in one transaction, storage cleanup
// follows best-effort once the database is consistent.
func deleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	var product models.Product
	if err := db.DB.First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find product",
		})
	}

	var images []models.ProductImage
	if err := db.DB.Where("product_id = ?", product.ID).Find(&images).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load product images",
		})
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete product",
		})
	}

	// The rows are gone, leftover objects are only a storage leak
	for _, img := range images {
		if err := bucket.Remove(imageStorageKey(img)); err != nil {
			log.Println("Failed to remove storage object for deleted product:", err)
		}
	}

	revalidate("/admin/produk", "/galeri", "/")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product deleted successfully",
	})
}

// normalizePrice maps an absent or blank price to NULL, meaning "price
// on inquiry". A stored zero price is never produced.
func normalizePrice(price *float64) *float64 {
	if price == nil || *price == 0 {
		return nil
	}
	return price
}
