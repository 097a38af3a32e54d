package product

import (
	"time"

	"gorm.io/gorm"
)

// Category classifies a beverage.
type Category string

const (
	CategorySoftDrink   Category = "soft_drink"
	CategoryJuice       Category = "juice"
	CategoryWater       Category = "water"
	CategoryCoffee      Category = "coffee"
	CategoryTea         Category = "tea"
	CategoryEnergyDrink Category = "energy_drink"
	CategoryOther       Category = "other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySoftDrink, CategoryJuice, CategoryWater, CategoryCoffee,
		CategoryTea, CategoryEnergyDrink, CategoryOther:
		return true
	}
	return false
}

// Product is a catalog entry. Price is in minor currency units.
// Rating and ReviewCount are derived from the product's reviews and are only
// written by UpdateRating.
type Product struct {
	ID          string         `gorm:"primarykey;size:36" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Price       int64          `gorm:"not null;index" json:"price"`
	Category    Category       `gorm:"size:32;not null;index" json:"category"`
	Image       string         `gorm:"size:500" json:"image,omitempty"`
	Stock       int            `gorm:"not null;default:0" json:"stock"`
	Rating      float64        `gorm:"not null;default:0" json:"rating"`
	ReviewCount int            `gorm:"not null;default:0" json:"review_count"`
	Volume      string         `gorm:"size:50;not null" json:"volume"`
	Brand       string         `gorm:"size:100;not null;index" json:"brand"`
	IsActive    bool           `gorm:"not null;index" json:"is_active"`
}

// TableName returns the table name for Product model.
func (Product) TableName() string {
	return "products"
}

// ListFilter narrows a catalog listing.
type ListFilter struct {
	Category        Category
	Search          string
	MinPrice        *int64
	MaxPrice        *int64
	IncludeInactive bool
	Offset          int
	Limit           int
}
