package cart

import (
	"time"

	domain "github.com/example/beverage-storefront/domain/cart"
	"github.com/example/beverage-storefront/domain/product"
)

// ItemResponse is a cart line joined with the product's current data.
type ItemResponse struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
	Subtotal  int64     `json:"subtotal"`
	Available bool      `json:"available"`
	AddedAt   time.Time `json:"added_at"`
}

// CartResponse is the user's cart with totals at current prices.
type CartResponse struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Items      []ItemResponse `json:"items"`
	ItemCount  int            `json:"item_count"`
	TotalPrice int64          `json:"total_price"`
	Version    int            `json:"version"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// GetCartRequest identifies the cart owner.
type GetCartRequest struct {
	UserID string `json:"user_id"`
}

// AddItemRequest adds units of a product.
type AddItemRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest overwrites a line's quantity; zero removes it.
type UpdateItemRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// RemoveItemRequest drops a line.
type RemoveItemRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

// ClearCartRequest empties the cart.
type ClearCartRequest struct {
	UserID string `json:"user_id"`
}

func toCartResponse(c *domain.Cart, products map[string]*product.Product) *CartResponse {
	resp := &CartResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		Items:      make([]ItemResponse, 0, len(c.Items)),
		TotalPrice: c.TotalPrice,
		Version:    c.Version,
		UpdatedAt:  c.UpdatedAt,
	}
	for _, item := range c.Items {
		line := ItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			AddedAt:   item.CreatedAt,
		}
		if p, ok := products[item.ProductID]; ok {
			line.Name = p.Name
			line.Image = p.Image
			line.Price = p.Price
			line.Subtotal = p.Price * int64(item.Quantity)
			line.Available = p.IsActive && !p.DeletedAt.Valid
		}
		resp.Items = append(resp.Items, line)
		resp.ItemCount += item.Quantity
	}
	return resp
}
