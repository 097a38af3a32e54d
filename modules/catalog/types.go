package catalog

import (
	"github.com/example/beverage-storefront/domain/product"
	"github.com/example/beverage-storefront/domain/user"
)

// ListProductsRequest filters and pages the catalog.
type ListProductsRequest struct {
	Category        product.Category `json:"category,omitempty"`
	Search          string           `json:"search,omitempty"`
	MinPrice        *int64           `json:"min_price,omitempty"`
	MaxPrice        *int64           `json:"max_price,omitempty"`
	IncludeInactive bool             `json:"include_inactive,omitempty"`
	Page            int              `json:"page"`
	Limit           int              `json:"limit"`
	Role            user.Role        `json:"role,omitempty"`
}

// ListProductsResponse is one page of products.
type ListProductsResponse struct {
	Products   []product.Product `json:"products"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// GetProductRequest fetches one product. Inactive products are only visible to admins.
type GetProductRequest struct {
	ID   string    `json:"id"`
	Role user.Role `json:"role,omitempty"`
}

// CreateProductRequest describes a new product.
type CreateProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       int64            `json:"price"`
	Category    product.Category `json:"category"`
	Image       string           `json:"image,omitempty"`
	Stock       int              `json:"stock"`
	Volume      string           `json:"volume"`
	Brand       string           `json:"brand"`
	IsActive    *bool            `json:"is_active,omitempty"`
	Role        user.Role        `json:"role,omitempty"`
}

// UpdateProductRequest changes only the fields that are set.
type UpdateProductRequest struct {
	ID          string            `json:"id"`
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Price       *int64            `json:"price,omitempty"`
	Category    *product.Category `json:"category,omitempty"`
	Image       *string           `json:"image,omitempty"`
	Stock       *int              `json:"stock,omitempty"`
	Volume      *string           `json:"volume,omitempty"`
	Brand       *string           `json:"brand,omitempty"`
	IsActive    *bool             `json:"is_active,omitempty"`
	Role        user.Role         `json:"role,omitempty"`
}

// DeleteProductRequest soft-deletes a product.
type DeleteProductRequest struct {
	ID   string    `json:"id"`
	Role user.Role `json:"role,omitempty"`
}

// DeleteProductResponse confirms a deletion.
type DeleteProductResponse struct {
	Deleted bool `json:"deleted"`
}

// CountProductsRequest has no fields.
type CountProductsRequest struct{}

// CountProductsResponse holds the number of non-deleted products.
type CountProductsResponse struct {
	Total int64 `json:"total"`
}
