package models

import "time"

type ProductImage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProductID    uint      `gorm:"index" json:"product_id" validate:"required"`
	ImageURL     string    `json:"image_url" validate:"required"`
	StorageKey   string    `json:"storage_key"` // bucket path, kept alongside the URL so deletes never parse URLs
	IsPrimary    bool      `gorm:"default:false" json:"is_primary"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
