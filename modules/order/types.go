package order

import (
	domain "github.com/example/beverage-storefront/domain/order"
	"github.com/example/beverage-storefront/domain/user"
)

// CheckoutRequest turns the caller's cart into an order.
type CheckoutRequest struct {
	UserID          string                 `json:"user_id"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	PaymentMethod   domain.PaymentMethod   `json:"payment_method"`
	Notes           string                 `json:"notes,omitempty"`
}

// GetOrderRequest fetches one order. Only the owner or an admin may read it.
type GetOrderRequest struct {
	OrderID string    `json:"order_id"`
	UserID  string    `json:"user_id"`
	Role    user.Role `json:"role"`
}

// GetMyOrdersRequest lists the caller's orders.
type GetMyOrdersRequest struct {
	UserID string `json:"user_id"`
}

// OrdersResponse wraps a plain list of orders.
type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// ListOrdersRequest is the admin listing.
type ListOrdersRequest struct {
	Status domain.Status `json:"status,omitempty"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
	Role   user.Role     `json:"role"`
}

// ListOrdersResponse is one page of the admin listing.
type ListOrdersResponse struct {
	Orders     []domain.Order `json:"orders"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// UpdateStatusRequest sets either or both statuses. Admin only.
type UpdateStatusRequest struct {
	OrderID       string                `json:"order_id"`
	Status        *domain.Status        `json:"order_status,omitempty"`
	PaymentStatus *domain.PaymentStatus `json:"payment_status,omitempty"`
	Role          user.Role             `json:"role"`
}

// StatsRequest asks for order totals. Admin only.
type StatsRequest struct {
	Role user.Role `json:"role"`
}
