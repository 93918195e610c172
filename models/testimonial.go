package models

import "time"

type Testimonial struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CustomerName string    `json:"customer_name" validate:"required"`
	Message      string    `json:"message" validate:"required"`
	ProductID    *uint     `json:"product_id"`
	ImageURL     *string   `json:"image_url"`
	IsFeatured   bool      `gorm:"default:false" json:"is_featured"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	Product      *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
