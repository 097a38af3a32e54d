package api

import (
	domain "github.com/example/beverage-storefront/domain/order"
	"github.com/go-monolith/mono"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// CheckoutBody is the body of POST /api/v1/orders.
type CheckoutBody struct {
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	PaymentMethod   domain.PaymentMethod   `json:"payment_method"`
	Notes           string                 `json:"notes"`
}

// UpdateOrderStatusBody is the body of PUT /api/v1/admin/orders/:id/status.
type UpdateOrderStatusBody struct {
	OrderStatus   *domain.Status        `json:"order_status"`
	PaymentStatus *domain.PaymentStatus `json:"payment_status"`
}

// UpdateItemBody is the body of PUT /api/v1/cart/items/:productId.
type UpdateItemBody struct {
	Quantity int `json:"quantity"`
}

// CreateReviewBody is the body of POST /api/v1/products/:id/reviews.
type CreateReviewBody struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

// UpdateReviewBody is the body of PUT /api/v1/reviews/:id.
type UpdateReviewBody struct {
	Rating  *int    `json:"rating"`
	Title   *string `json:"title"`
	Comment *string `json:"comment"`
}

// AdminStatsResponse is the admin dashboard summary.
type AdminStatsResponse struct {
	TotalUsers    int64 `json:"total_users"`
	TotalProducts int64 `json:"total_products"`
	TotalOrders   int64 `json:"total_orders"`
	TotalRevenue  int64 `json:"total_revenue"`
}

// HealthResponse aggregates the health of every registered module.
type HealthResponse struct {
	Status  string                       `json:"status"`
	Modules map[string]mono.HealthStatus `json:"modules"`
}
