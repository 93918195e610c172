package models

import "time"

type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `json:"name" validate:"required"`
	Description *string        `json:"description"`
	Price       *float64       `json:"price"` // nil means "price on inquiry"
	CategoryID  *uint          `json:"category_id"`
	IsAvailable bool           `json:"is_available"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	Category    *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // Belongs to one Category
	Images      []ProductImage `gorm:"foreignKey:ProductID" json:"images,omitempty"`
}
