package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// OrderPlacedItem is one purchased line inside OrderPlacedEvent.
type OrderPlacedItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderPlacedEvent is emitted after a checkout commits.
type OrderPlacedEvent struct {
	OrderID     string            `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	UserID      string            `json:"user_id"`
	TotalPrice  int64             `json:"total_price"`
	Items       []OrderPlacedItem `json:"items"`
	PlacedAt    time.Time         `json:"placed_at"`
}

// OrderPlacedV1 is the typed event definition for checkout.
// Subject: events.order.v1.order-placed
var OrderPlacedV1 = helper.EventDefinition[OrderPlacedEvent](
	"order", "OrderPlaced", "v1",
)

// OrderStatusChangedEvent is emitted when an admin changes an order's statuses.
type OrderStatusChangedEvent struct {
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	UserID        string    `json:"user_id"`
	OrderStatus   string    `json:"order_status"`
	PaymentStatus string    `json:"payment_status"`
	ChangedAt     time.Time `json:"changed_at"`
}

// OrderStatusChangedV1 is the typed event definition for status updates.
// Subject: events.order.v1.order-status-changed
var OrderStatusChangedV1 = helper.EventDefinition[OrderStatusChangedEvent](
	"order", "OrderStatusChanged", "v1",
)

// ReviewChangedEvent is emitted after a review mutation and the rating
// recompute it triggers have committed.
type ReviewChangedEvent struct {
	ReviewID    string    `json:"review_id"`
	ProductID   string    `json:"product_id"`
	UserID      string    `json:"user_id"`
	Action      string    `json:"action"` // created, updated, deleted
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	ChangedAt   time.Time `json:"changed_at"`
}

// ReviewChangedV1 is the typed event definition for review mutations.
// Subject: events.review.v1.review-changed
var ReviewChangedV1 = helper.EventDefinition[ReviewChangedEvent](
	"review", "ReviewChanged", "v1",
)
